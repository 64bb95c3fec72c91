package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// InitEnvironmentVariables loads the .env file next to the working directory.
// Production deploys inject real environment variables instead, so a missing
// file is only fatal outside production.
func InitEnvironmentVariables() error {
	if os.Getenv("GO_ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("InitEnvironmentVariables: failed to load .env file: %w", err)
	}

	return nil
}

func RequireEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatalf("missing %s environment variable", name)
	}

	return value
}

func GetenvOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return fallback
}

func GetenvInt(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s environment variable: %v", name, err)
	}

	return parsed
}

func GetenvFloat(name string, fallback float64) float64 {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("invalid %s environment variable: %v", name, err)
	}

	return parsed
}

func GetenvBool(name string, fallback bool) bool {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "TRUE", "True":
		return true
	case "0", "false", "no", "FALSE", "False":
		return false
	default:
		log.Fatalf("invalid %s environment variable: %s", name, value)
		return fallback
	}
}

func GetenvSeconds(name string, fallback time.Duration) time.Duration {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s environment variable: %v", name, err)
	}

	return time.Duration(parsed) * time.Second
}
