package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

func Config(key string) string {
	loadEnv.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

// ConfigBool reads a boolean flag, defaulting to fallback when the
// variable is unset or unparsable.
func ConfigBool(key string, fallback bool) bool {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s: %q, using default %v", key, raw, fallback)
		return fallback
	}
	return val
}
