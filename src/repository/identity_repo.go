package repository

import (
	"context"
	"fmt"

	"github.com/apaarauth/backend/src/database"
	"github.com/apaarauth/backend/src/domain"
	"gorm.io/gorm"
)

type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// CreateIdentity inserts the identity. A unique constraint hit on apar_id or
// phone is returned wrapping domain.ErrDuplicateIdentity.
func (r *IdentityRepository) CreateIdentity(ctx context.Context, identity *domain.Identity) error {
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateIdentity, err)
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) ExistsByAparID(ctx context.Context, aparID string) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("apar_id = ?", aparID))
}

func (r *IdentityRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("phone = ?", phone))
}

// ExistsByAparIDOrPhone reports whether any identity matches either value.
func (r *IdentityRepository) ExistsByAparIDOrPhone(ctx context.Context, aparID, phone string) (bool, error) {
	return r.exists(r.db.WithContext(ctx).Where("apar_id = ? OR phone = ?", aparID, phone))
}

func (r *IdentityRepository) exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Model(&domain.Identity{}).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to query identities: %w", err)
	}
	return count > 0, nil
}
