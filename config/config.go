// Package config loads application configuration from the environment.
// File: config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"inohax-registration/logger"
)

// Config holds every runtime setting the service needs. All values come from
// environment variables (optionally via a .env file) with safe local defaults.
type Config struct {
	Env  string
	Port string

	// persistence
	MongoURL string
	DBName   string

	// outbound mail
	SMTPHost   string
	SMTPPort   int
	EmailUser  string
	EmailPass  string
	AdminEmail string

	// admin auth
	TokenSecret        string
	SessionSecret      string
	BreakGlassUser     string
	BreakGlassPassword string

	// registration window
	RegistrationClose     time.Time // zero value means no cutoff
	RegistrationsDisabled bool

	ApplicationURL string
	MetricsEnabled bool
}

// Load reads configuration from the environment. A missing .env file is not an
// error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Env:                os.Getenv("APP_ENV"),
		Port:               getenvDefault("PORT", "8080"),
		MongoURL:           getenvDefault("MONGODB_URL", "mongodb://localhost:27017"),
		DBName:             getenvDefault("DB_NAME", "inohax"),
		SMTPHost:           getenvDefault("SMTP_HOST", "smtp.gmail.com"),
		EmailUser:          os.Getenv("EMAIL_USER"),
		EmailPass:          os.Getenv("EMAIL_PASS"),
		AdminEmail:         getenvDefault("ADMIN_EMAIL", "inovacteam@gmail.com"),
		TokenSecret:        os.Getenv("TOKEN_SECRET"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		BreakGlassUser:     os.Getenv("BREAK_GLASS_USER"),
		BreakGlassPassword: os.Getenv("BREAK_GLASS_PASSWORD"),
		ApplicationURL:     getenvDefault("APPLICATION_URL", "http://localhost:8080"),
	}

	c.SMTPPort = 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn.Printf("Load: invalid SMTP_PORT %q, using 587", v)
		} else {
			c.SMTPPort = port
		}
	}

	// The registration cutoff is optional; when REGISTRATION_CLOSE is unset
	// registrations stay open indefinitely.
	if v := os.Getenv("REGISTRATION_CLOSE"); v != "" {
		closeAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			logger.Warn.Printf("Load: invalid REGISTRATION_CLOSE %q, ignoring cutoff: %v", v, err)
		} else {
			c.RegistrationClose = closeAt
		}
	}

	c.RegistrationsDisabled = os.Getenv("REGISTRATIONS_DISABLED") == "true"
	c.MetricsEnabled = os.Getenv("METRICS_ENABLED") == "true"

	if c.TokenSecret == "" {
		// Dev fallback only; admin tokens signed with this secret are
		// worthless the moment the process restarts with a real one.
		logger.Warn.Println("Load: TOKEN_SECRET is not set, using an insecure development secret")
		c.TokenSecret = "dev-insecure-token-secret"
	}
	if c.SessionSecret == "" {
		logger.Warn.Println("Load: SESSION_SECRET is not set, using an insecure development secret")
		c.SessionSecret = "dev-insecure-session-secret"
	}

	return c, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
