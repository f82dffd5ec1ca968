package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port            string
	GRPCPort        string
	LogLevel        string
	ShutdownTimeout time.Duration
	TrustedProxies  []string

	// Offline policy database. Empty disables the policy check endpoints.
	MMDBPath string

	// Geolocation providers.
	GeoPrimaryURL   string
	GeoSecondaryURL string
	GeoTimeout      time.Duration

	// Admin cookie gate.
	AdminSessionToken string
	AdminPassword     string

	// Referral tracking. Empty KafkaBrokers keeps clicks in memory only.
	ReferralCookieMaxAge time.Duration
	KafkaBrokers         []string
	KafkaReferralTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	geoTimeout, err := parseDuration("GEO_TIMEOUT", "3s")
	if err != nil {
		return nil, err
	}
	cookieMaxAge, err := parseDuration("REFERRAL_COOKIE_MAX_AGE", "720h")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            envOrDefault("PORT", "8080"),
		GRPCPort:        os.Getenv("GRPC_PORT"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		ShutdownTimeout: shutdownTimeout,
		TrustedProxies:  parseList(os.Getenv("TRUSTED_PROXIES")),

		MMDBPath: os.Getenv("MMDB_PATH"),

		GeoPrimaryURL:   envOrDefault("GEO_PRIMARY_URL", "https://ipapi.co"),
		GeoSecondaryURL: envOrDefault("GEO_SECONDARY_URL", "http://ip-api.com"),
		GeoTimeout:      geoTimeout,

		AdminSessionToken: os.Getenv("ADMIN_SESSION_TOKEN"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),

		ReferralCookieMaxAge: cookieMaxAge,
		KafkaBrokers:         parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaReferralTopic:   envOrDefault("KAFKA_REFERRAL_TOPIC", "referral-clicks"),
	}

	if err := validateURL("GEO_PRIMARY_URL", cfg.GeoPrimaryURL); err != nil {
		return nil, err
	}
	if err := validateURL("GEO_SECONDARY_URL", cfg.GeoSecondaryURL); err != nil {
		return nil, err
	}
	if cfg.AdminPassword != "" && cfg.AdminSessionToken == "" {
		return nil, errors.New("ADMIN_PASSWORD is set but ADMIN_SESSION_TOKEN is not")
	}

	return cfg, nil
}

// AdminEnabled reports whether the admin surface can be unlocked.
func (c *Config) AdminEnabled() bool {
	return c.AdminSessionToken != ""
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
