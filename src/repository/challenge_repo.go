package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apaarauth/backend/src/domain"
	"gorm.io/gorm"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// CreateChallenge appends a challenge. Earlier challenges for the same pair
// are left untouched.
func (r *ChallengeRepository) CreateChallenge(ctx context.Context, challenge *domain.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// FindLatest returns the most recently created challenge for the pair, or nil
// if none exists. Ties on created_at resolve to the later insert.
func (r *ChallengeRepository) FindLatest(ctx context.Context, aparID, phone string) (*domain.Challenge, error) {
	var challenge domain.Challenge
	err := r.db.WithContext(ctx).
		Where("apar_id = ? AND phone = ?", aparID, phone).
		Order("created_at DESC").
		Order("id DESC").
		Take(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest challenge: %w", err)
	}
	return &challenge, nil
}

// Consume marks the challenge consumed. It returns false when another request
// consumed it first.
func (r *ChallengeRepository) Consume(ctx context.Context, id int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Challenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpiredBefore removes challenges whose window closed before cutoff
func (r *ChallengeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&domain.Challenge{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", result.Error)
	}
	return result.RowsAffected, nil
}
