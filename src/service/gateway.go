package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Gateway delivers a message body to a phone number out of band.
type Gateway interface {
	Send(ctx context.Context, to, body string) error
	// TestMode reports whether messages are only logged locally.
	TestMode() bool
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioGateway sends SMS through the Twilio Messages API.
type TwilioGateway struct {
	api  messageCreator
	from string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
}

// Configured reports whether all Twilio credentials are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

func NewTwilioGateway(config TwilioConfig) (*TwilioGateway, error) {
	if !config.Configured() {
		return nil, errors.New("twilio: account sid, auth token and from number are required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSID,
		Password: config.AuthToken,
	})
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	return &TwilioGateway{
		api:  client.Api,
		from: config.From,
	}, nil
}

func (g *TwilioGateway) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.from)
	params.SetBody(body)

	if _, err := g.api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms via twilio: %w", err)
	}
	return nil
}

func (g *TwilioGateway) TestMode() bool {
	return false
}

// LogGateway is the fallback used when no SMS transport is configured. It
// writes the message to the log instead of transmitting it.
type LogGateway struct{}

func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

func (g *LogGateway) Send(ctx context.Context, to, body string) error {
	zerolog.Ctx(ctx).Warn().
		Str("component", "log-gateway").
		Str("to", to).
		Str("body", body).
		Msg("(Test mode) SMS not sent")
	return nil
}

func (g *LogGateway) TestMode() bool {
	return true
}

// NewGateway picks Twilio when it is configured and the log fallback otherwise.
func NewGateway(config TwilioConfig) (Gateway, error) {
	if !config.Configured() {
		return NewLogGateway(), nil
	}
	return NewTwilioGateway(config)
}
