package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FindProjectRoot walks up from this source file to the directory holding
// go.mod. It panics outside a module checkout, so only tests call it.
func FindProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("project root not found: no go.mod above " + filepath.Dir(filename))
		}
		dir = parent
	}
}

// MaskPhone keeps the last 4 digits of a phone number for logging.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
