package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Token lifetime is split into days and seconds so that
// test configurations can use sub-minute expiries while production uses
// multi-day ones.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign auth tokens
	TokenTTLDays    int    // auth token time-to-live, day component
	TokenTTLSeconds int    // auth token time-to-live, second component
	BcryptCost      int    // bcrypt cost for password hashing
	PageSize        int    // rows per page on listing endpoints
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		TokenTTLDays:    mustInt("AUTH_TOKEN_EXPIRY_DAYS"),
		TokenTTLSeconds: mustInt("AUTH_TOKEN_EXPIRY_SECONDS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		PageSize:        mustInt("PAGE_SIZE"),
	}
}

// TokenTTL combines the day and second components into a single duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLDays)*24*time.Hour +
		time.Duration(c.TokenTTLSeconds)*time.Second
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
