package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/apaarauth/backend/src/app"
	"github.com/joho/godotenv"
)

func main() {
	migrationPath := flag.String("path", "", "migration source URL (defaults to MIGRATION_PATH or file://migrations)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-path file://migrations] up|down\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Overload(".env"); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatalf("REQUIRED: DB_URL not set in environment")
	}

	path := *migrationPath
	if path == "" {
		path = os.Getenv("MIGRATION_PATH")
	}
	if path == "" {
		path = "file://migrations"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger := app.InitLogger(level, "dev")

	var err error
	switch flag.Arg(0) {
	case "up":
		err = app.MigrationUp(dsn, path)
	case "down":
		err = app.MigrationDown(dsn, path)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("direction", flag.Arg(0)).Msg("Migration failed")
	}

	logger.Info().Str("direction", flag.Arg(0)).Str("path", path).Msg("Migration complete")
}
