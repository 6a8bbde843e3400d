package memory

import (
	"context"
	"sync"

	"github.com/apaarauth/backend/src/domain"
)

// IdentityStore keeps identities in process memory. It enforces apar_id and
// phone uniqueness under a single lock, so it is only suitable for
// single-process development and tests.
type IdentityStore struct {
	mu       sync.RWMutex
	byAparID map[string]domain.Identity
	byPhone  map[string]string
	nextID   int64
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byAparID: make(map[string]domain.Identity),
		byPhone:  make(map[string]string),
	}
}

func (s *IdentityStore) CreateIdentity(_ context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byAparID[identity.AparID]; ok {
		return domain.ErrDuplicateIdentity
	}
	if _, ok := s.byPhone[identity.Phone]; ok {
		return domain.ErrDuplicateIdentity
	}

	s.nextID++
	identity.ID = s.nextID
	s.byAparID[identity.AparID] = *identity
	s.byPhone[identity.Phone] = identity.AparID
	return nil
}

func (s *IdentityStore) ExistsByAparID(_ context.Context, aparID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byAparID[aparID]
	return ok, nil
}

func (s *IdentityStore) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byPhone[phone]
	return ok, nil
}

func (s *IdentityStore) ExistsByAparIDOrPhone(ctx context.Context, aparID, phone string) (bool, error) {
	if ok, _ := s.ExistsByAparID(ctx, aparID); ok {
		return true, nil
	}
	return s.ExistsByPhone(ctx, phone)
}

// FindByAparID returns a copy of the identity, or nil.
func (s *IdentityStore) FindByAparID(_ context.Context, aparID string) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.byAparID[aparID]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

// Count returns the number of stored identities.
func (s *IdentityStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAparID)
}
