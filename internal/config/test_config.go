package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads integration test settings from the .env file or TEST_* environment variables.
//
// Unset variables leave the matching sections empty so callers can skip the tests that need them.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Store.Driver = StoreDriverMySQL
	cfg.Database.Host = os.Getenv("TEST_DB_HOST")
	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")
	cfg.Database.Port = 3306

	if dbPortStr := os.Getenv("TEST_DB_PORT"); dbPortStr != "" {
		dbPort, err := strconv.Atoi(dbPortStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
		}
		cfg.Database.Port = dbPort
	}

	cfg.Redis.Addr = os.Getenv("TEST_REDIS_ADDR")
	cfg.Redis.PendingTTL = time.Minute
	cfg.Redis.ResultTTL = time.Hour

	return cfg, nil
}
