package memory

import (
	"context"
	"sync"
	"time"

	"github.com/apaarauth/backend/src/domain"
)

type pairKey struct {
	aparID string
	phone  string
}

// ChallengeStore is an append-only in-memory challenge log.
type ChallengeStore struct {
	mu     sync.Mutex
	rows   map[pairKey][]*domain.Challenge
	nextID int64
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{rows: make(map[pairKey][]*domain.Challenge)}
}

func (s *ChallengeStore) CreateChallenge(_ context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	challenge.ID = s.nextID
	stored := *challenge
	key := pairKey{challenge.AparID, challenge.Phone}
	s.rows[key] = append(s.rows[key], &stored)
	return nil
}

// FindLatest returns a copy of the newest challenge for the pair. Equal
// timestamps resolve to the later insert.
func (s *ChallengeStore) FindLatest(_ context.Context, aparID, phone string) (*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *domain.Challenge
	for _, c := range s.rows[pairKey{aparID, phone}] {
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (s *ChallengeStore) Consume(_ context.Context, id int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.rows {
		for _, c := range list {
			if c.ID != id {
				continue
			}
			if c.ConsumedAt != nil {
				return false, nil
			}
			consumedAt := at
			c.ConsumedAt = &consumedAt
			return true, nil
		}
	}
	return false, nil
}

func (s *ChallengeStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, list := range s.rows {
		kept := list[:0]
		for _, c := range list {
			if c.ExpiresAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			delete(s.rows, key)
		} else {
			s.rows[key] = kept
		}
	}
	return deleted, nil
}

// CountForPair returns how many challenges are stored for the pair.
func (s *ChallengeStore) CountForPair(_ context.Context, aparID, phone string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows[pairKey{aparID, phone}])), nil
}
