package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Alerts   AlertsConfig
	// RulesPath points at an optional TOML rules file. Empty means defaults.
	RulesPath string
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	Level     string
	SentryDSN string
}

type StoreConfig struct {
	Backend string // sqlite or firestore
	DBPath  string // SQLite file, used when Backend is sqlite
}

type FirebaseConfig struct {
	ProjectID         string
	CredentialsPath   string
	FirestoreDatabase string
	// Emulator support for integration testing
	UseEmulator           bool
	EmulatorFirestoreHost string
}

type KafkaConfig struct {
	Brokers []string // empty disables event publishing
}

type AlertsConfig struct {
	WebhookURL string // empty logs alerts instead of posting them
}

type JWTConfig struct {
	SigningKey string        // Secret key for JWT signing
	Issuer     string        // JWT issuer claim
	TTL        time.Duration // token lifetime
}

// Load returns application configuration from environment variables. A .env
// file in the working directory is read first if present; variables already
// set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Log: LogConfig{
			Level:     getEnv("LOG_LEVEL", "INFO"),
			SentryDSN: getEnv("SENTRY_DSN", ""),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE", StoreSQLite)),
			DBPath:  getEnv("DB_PATH", "foodrescue.db"),
		},
		Firebase: FirebaseConfig{
			ProjectID:             getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath:       getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			FirestoreDatabase:     getEnv("FIRESTORE_DATABASE", "(default)"),
			UseEmulator:           getEnvBool("USE_FIREBASE_EMULATOR", false),
			EmulatorFirestoreHost: getEnv("FIRESTORE_EMULATOR_HOST", "localhost:8081"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
			Issuer:     getEnv("JWT_ISSUER", "foodrescue"),
			TTL:        time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 720)) * time.Minute,
		},
		Alerts: AlertsConfig{
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
		RulesPath: getEnv("RULES_PATH", ""),
	}
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Server.Env == "development"
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite store"))
		}
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required for the firestore store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreSQLite, StoreFirestore, c.Store.Backend))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_MINUTES must be positive"))
	}
	if !c.IsDev() && c.JWT.SigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required outside development"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
