package domain

import (
	"time"
)

// Challenge is one issued OTP for an (apar_id, phone) pair. Rows are
// append-only; only the most recently created row for a pair is eligible.
type Challenge struct {
	ID         int64      `gorm:"primaryKey"`
	AparID     string     `gorm:"column:apar_id;type:varchar(12);not null"`
	Phone      string     `gorm:"type:varchar(10);not null"`
	Code       string     `gorm:"column:otp;type:varchar(4);not null"`
	CreatedAt  time.Time  `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"not null"`
	ConsumedAt *time.Time `gorm:"default:null"`
}

func (Challenge) TableName() string {
	return "otps"
}

// ExpiredAt reports whether the challenge is outside its window at now.
// The window is half-open: a challenge checked exactly at ExpiresAt is expired.
func (c *Challenge) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *Challenge) Consumed() bool {
	return c.ConsumedAt != nil
}

// Outcome is the successful result of a verification.
type Outcome string

const (
	OutcomeSignupComplete Outcome = "signup_complete"
	OutcomeLoginComplete  Outcome = "login_complete"
)
