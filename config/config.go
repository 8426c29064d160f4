package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverR2    = "r2"
	StorageDriverLocal = "local"
)

// Config holds every environment-derived setting. It is built once in main
// and passed by reference into each service constructor.
type Config struct {
	Port           string
	DatabaseURL    string
	AdminToken     string
	AllowedOrigins string

	StorageDriver string

	// R2 / S3-compatible storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string

	// Local storage (dev fallback)
	LocalStorageDir string
	PublicBaseURL   string

	// Ticket rendering
	FestivalName   string
	TicketLogoPath string

	IdentityPrefix  string
	ArtifactTimeout time.Duration
}

// Load reads the environment (plus an optional .env file) and validates the
// result.
func Load() (*Config, error) {
	// .env is optional; in Docker/CI the variables come from the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "5400"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		AdminToken:        os.Getenv("ADMIN_SERVICE_TOKEN"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		StorageDriver:     getEnv("STORAGE_DRIVER", StorageDriverLocal),
		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:        os.Getenv("CDN_BASE_URL"),
		LocalStorageDir:   getEnv("LOCAL_STORAGE_DIR", "uploads"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:5400/files"),
		FestivalName:      getEnv("FESTIVAL_NAME", "Gradient Festival"),
		TicketLogoPath:    os.Getenv("TICKET_LOGO_PATH"),
		IdentityPrefix:    getEnv("REGISTRATION_ID_PREFIX", "GDN"),
	}

	timeoutSec, err := strconv.Atoi(getEnv("ARTIFACT_TIMEOUT_SECONDS", "5"))
	if err != nil || timeoutSec <= 0 {
		return nil, fmt.Errorf("config: ARTIFACT_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.ArtifactTimeout = time.Duration(timeoutSec) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL is invalid (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL is invalid (%q): missing scheme or host", c.DatabaseURL)
	}

	if strings.TrimSpace(c.AdminToken) == "" {
		return fmt.Errorf("config: ADMIN_SERVICE_TOKEN is required")
	}

	switch c.StorageDriver {
	case StorageDriverLocal:
		// nothing else to check, defaults are usable
	case StorageDriverR2:
		for name, val := range map[string]string{
			"CLOUDFLARE_ACCOUNT_ID": c.R2AccountID,
			"R2_ACCESS_KEY_ID":      c.R2AccessKeyID,
			"R2_ACCESS_KEY_SECRET":  c.R2AccessKeySecret,
			"R2_BUCKET_NAME":        c.R2Bucket,
		} {
			if strings.TrimSpace(val) == "" {
				return fmt.Errorf("config: %s is required when STORAGE_DRIVER=r2", name)
			}
		}
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %q or %q, got %q",
			StorageDriverR2, StorageDriverLocal, c.StorageDriver)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
