package testutil

import (
	"os"
	"path/filepath"

	"github.com/apaarauth/backend/src/utils"
	"github.com/joho/godotenv"
)

// GetEnv reads key after loading the project .env, if one exists.
func GetEnv(key string) string {
	_ = godotenv.Load(filepath.Join(utils.FindProjectRoot(), ".env"))
	return os.Getenv(key)
}
