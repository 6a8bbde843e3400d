package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	DefaultRetention     = 24 * time.Hour
	DefaultPurgeSchedule = "@hourly"
)

// ExpiredChallengeStore deletes challenges by expiry.
type ExpiredChallengeStore interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionService purges challenges whose window closed more than retention
// ago. It runs outside the request path.
type RetentionService struct {
	challenges ExpiredChallengeStore
	retention  time.Duration
	nowF       func() time.Time
}

func NewRetentionService(challenges ExpiredChallengeStore, retention time.Duration) *RetentionService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RetentionService{
		challenges: challenges,
		retention:  retention,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// logger wraps the execution context with component info
func (s *RetentionService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "retention-service").Logger()
	return &l
}

// PurgeExpired deletes every challenge that expired before now minus the
// retention period and returns the number of rows removed.
func (s *RetentionService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.nowF().Add(-s.retention)

	deleted, err := s.challenges.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.logger(ctx).Error().Err(err).Time("cutoff", cutoff).Msg("failed to purge expired challenges")
		return 0, err
	}

	s.logger(ctx).Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("purged expired challenges")
	return deleted, nil
}

// RetentionScheduler runs PurgeExpired on a cron schedule. At most one purge
// runs at a time; a run that finds another in progress is skipped.
type RetentionScheduler struct {
	cron     *cron.Cron
	service  *RetentionService
	schedule string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  sync.Mutex
}

// cronLogger routes cron's internal logs to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NewRetentionScheduler validates the schedule and returns a stopped scheduler.
func NewRetentionScheduler(ctx context.Context, service *RetentionService, schedule string) (*RetentionScheduler, error) {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}

	ctx, cancel := context.WithCancel(ctx)
	logger := cronLogger{logger: zerolog.Ctx(ctx).With().Str("component", "retention-scheduler").Logger()}
	js := &RetentionScheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		service:  service,
		schedule: schedule,
		ctx:      ctx,
		cancel:   cancel,
	}

	if _, err := js.cron.AddFunc(schedule, js.purge); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	return js, nil
}

// Start runs one purge immediately and then follows the schedule.
func (js *RetentionScheduler) Start() {
	zerolog.Ctx(js.ctx).Info().Str("schedule", js.schedule).Msg("starting retention scheduler")

	js.wg.Add(1)
	go func() {
		defer js.wg.Done()
		js.purge()
	}()

	js.cron.Start()
}

// Stop cancels running purges and waits for them, including cron-triggered
// ones, to return.
func (js *RetentionScheduler) Stop() {
	js.cancel()
	<-js.cron.Stop().Done()
	js.wg.Wait()
}

func (js *RetentionScheduler) purge() {
	if js.ctx.Err() != nil {
		return
	}
	if !js.running.TryLock() {
		zerolog.Ctx(js.ctx).Debug().Msg("purge already running, skipping")
		return
	}
	defer js.running.Unlock()

	// errors are logged by the service
	_, _ = js.service.PurgeExpired(js.ctx)
}
