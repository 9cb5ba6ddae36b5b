package config

import (
	"os"

	"github.com/joho/godotenv"

	"fjacquet/statement-extract/internal/logging"
)

// LoadEnv loads environment variables from a .env file when one exists.
// A missing file is not an error; the environment simply takes precedence.
func LoadEnv(log logging.Logger) {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("Failed to load .env file")
		return
	}
	log.Debug(".env file loaded")
}
