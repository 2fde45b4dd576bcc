// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers supported by the document store factory
const (
	StoreDriverFirestore = "firestore"
	StoreDriverMySQL     = "mysql"
	StoreDriverMemory    = "memory"
)

const defaultTurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// DefaultSessionSecret is used when SESSION_SECRET is unset
const DefaultSessionSecret = "your_secret_key_here"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	Store     StoreConfig
	Firestore FirestoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Turnstile TurnstileConfig
	SMTP      SMTPConfig
	Videos    VideoConfig
	// SessionSecret signs flash cookies
	SessionSecret string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	BaseURL            string
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Driver string
}

// FirestoreConfig holds the service account fields used to build Firestore credentials
type FirestoreConfig struct {
	ProjectID    string
	PrivateKeyID string
	PrivateKey   string
	ClientEmail  string
	ClientID     string
	AuthURI      string
	TokenURI     string
}

// Configured reports whether enough credentials are present to open a Firestore client
func (c FirestoreConfig) Configured() bool {
	return c.ProjectID != "" && c.PrivateKey != "" && c.ClientEmail != ""
}

// DatabaseConfig holds MySQL connection settings for the self-hosted document store
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Configured reports whether the MySQL connection settings are complete
func (c DatabaseConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.DBName != ""
}

// RedisConfig holds Redis connection settings for the duplicate-submission guard
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// PendingTTL bounds how long an unfinished request holds its key
	PendingTTL time.Duration
	// ResultTTL is how long a completed response is replayed
	ResultTTL time.Duration
}

// SMTPConfig holds mail relay settings for partnership notices
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	NotifyTo []string
}

// Configured reports whether notices can be sent
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != "" && len(c.NotifyTo) > 0
}

// TurnstileConfig holds bot-verification settings
type TurnstileConfig struct {
	SecretKey string
	SiteKey   string
	VerifyURL string
}

// VideoConfig holds the CDN video URLs rendered into marketing pages
type VideoConfig struct {
	DrMeddy      string
	Recording    string
	Sample1      string
	Sample2      string
	Sample3      string
	MedtalkIntro string
}

// TemplateData returns the video URLs keyed by their template names
func (v VideoConfig) TemplateData() map[string]string {
	return map[string]string{
		"video_dr_meddy_url":      v.DrMeddy,
		"video_recording_url":     v.Recording,
		"video_sample1_url":       v.Sample1,
		"video_sample2_url":       v.Sample2,
		"video_sample3_url":       v.Sample3,
		"video_medtalk_intro_url": v.MedtalkIntro,
	}
}

// Load reads configuration from environment variables.
//
// Every setting has a default; missing credentials disable the features that need them
// instead of failing startup. Only malformed numeric values return an error.
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Server configuration
	serverPort, err := getInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort
	cfg.Server.BaseURL = strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", serverPort)
	}
	rateLimit, err := getInt("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute = rateLimit

	// Logging configuration
	cfg.Logging.Level = getString("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Store configuration
	cfg.Store.Driver = strings.ToLower(getString("STORE_DRIVER", StoreDriverFirestore))

	cfg.Firestore = FirestoreConfig{
		ProjectID:    os.Getenv("FIREBASE_PROJECT_ID"),
		PrivateKeyID: os.Getenv("FIREBASE_PRIVATE_KEY_ID"),
		// Keys pasted into .env files usually carry escaped newlines
		PrivateKey:  strings.ReplaceAll(os.Getenv("FIREBASE_PRIVATE_KEY"), `\n`, "\n"),
		ClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
		ClientID:    os.Getenv("FIREBASE_CLIENT_ID"),
		AuthURI:     getString("FIREBASE_AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
		TokenURI:    getString("FIREBASE_TOKEN_URI", "https://oauth2.googleapis.com/token"),
	}

	// Database configuration (only used with STORE_DRIVER=mysql)
	cfg.Database.Host = os.Getenv("DB_HOST")
	dbPort, err := getInt("DB_PORT", 3306)
	if err != nil {
		return nil, err
	}
	cfg.Database.Port = dbPort
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("DB_NAME")

	// Redis configuration (optional)
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB
	pendingTTL, err := getInt("IDEMPOTENCY_PENDING_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.Redis.PendingTTL = time.Duration(pendingTTL) * time.Second
	resultTTL, err := getInt("IDEMPOTENCY_RESULT_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.Redis.ResultTTL = time.Duration(resultTTL) * time.Hour

	// Turnstile configuration
	cfg.Turnstile.SecretKey = os.Getenv("TURNSTILE_SECRET_KEY")
	cfg.Turnstile.SiteKey = os.Getenv("TURNSTILE_SITE_KEY")
	cfg.Turnstile.VerifyURL = getString("TURNSTILE_VERIFY_URL", defaultTurnstileVerifyURL)

	// SMTP configuration (optional)
	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Port = smtpPort
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = os.Getenv("SMTP_FROM")
	cfg.SMTP.NotifyTo = splitList(os.Getenv("PARTNERSHIP_NOTIFY_TO"))

	// CDN video URLs
	cfg.Videos = VideoConfig{
		DrMeddy:      os.Getenv("VIDEO_DR_MEDDY_URL"),
		Recording:    os.Getenv("VIDEO_RECORDING_URL"),
		Sample1:      os.Getenv("VIDEO_SAMPLE1_URL"),
		Sample2:      os.Getenv("VIDEO_SAMPLE2_URL"),
		Sample3:      os.Getenv("VIDEO_SAMPLE3_URL"),
		MedtalkIntro: os.Getenv("VIDEO_MEDTALK_INTRO_URL"),
	}

	cfg.SessionSecret = getString("SESSION_SECRET", DefaultSessionSecret)

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// SecureCookies reports whether the site is served over HTTPS
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.Server.BaseURL, "https://")
}

// parseOrigins parses comma-separated origins, defaulting to all origins
func parseOrigins(raw string) []string {
	origins := splitList(raw)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// splitList splits a comma-separated list, dropping blank entries
func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
