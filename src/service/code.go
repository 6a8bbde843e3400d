package service

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
)

const (
	codeMin = 1000
	codeMax = 9999
)

var codeSpan = big.NewInt(codeMax - codeMin + 1)

// GenerateCode returns a 4-digit numeric code drawn uniformly from
// [1000, 9999] using crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// CodeEqual compares two codes in constant time.
func CodeEqual(provided, stored string) bool {
	if provided == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
