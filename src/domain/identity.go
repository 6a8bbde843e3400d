package domain

import (
	"regexp"
	"time"
)

const MinimumSignupAge = 15

var (
	aparIDPattern = regexp.MustCompile(`^\d{12}$`)
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
)

// Identity is a registered APAAR ID and phone pair. Both columns carry unique
// constraints; rows are inserted once at signup and never updated.
type Identity struct {
	ID        int64     `gorm:"primaryKey"`
	AparID    string    `gorm:"column:apar_id;type:varchar(12);uniqueIndex:users_apar_id_key;not null"`
	Phone     string    `gorm:"type:varchar(10);uniqueIndex:users_phone_key;not null"`
	DOB       time.Time `gorm:"column:dob;type:date;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Identity) TableName() string {
	return "users"
}

// Intent is the caller-declared purpose of an OTP request.
type Intent string

const (
	IntentSignup Intent = "signup"
	IntentLogin  Intent = "login"
)

func (i Intent) Valid() bool {
	return i == IntentSignup || i == IntentLogin
}

func IsValidAparID(s string) bool {
	return aparIDPattern.MatchString(s)
}

func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ParseBirthDate accepts a calendar date (2006-01-02) or a full RFC 3339
// timestamp, and returns the date at UTC midnight.
func ParseBirthDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return time.Time{}, err
		}
		t = ts
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// AgeOn returns the number of completed years between dob and now.
func AgeOn(dob, now time.Time) int {
	now = now.UTC()
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
