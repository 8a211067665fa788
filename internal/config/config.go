// Package config loads service configuration from the environment so main
// stays lean.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the daemon needs: HTTP server settings plus the
// directory connection parameters handed to the core engine.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// CORSOrigins lists allowed CORS origins; empty disables CORS headers.
	CORSOrigins []string

	// Directory connection.
	ServerURL       string
	BaseDN          string
	ServiceDN       string
	ServicePassword string
	InsecureTLS     bool
	DialTimeout     time.Duration
	SizeLimit       int
	TimeLimitSecs   int
}

// FromEnv builds a Config from DIRVERIFY_* environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:            envOr("DIRVERIFY_ADDR", ":8080"),
		ServerURL:       os.Getenv("DIRVERIFY_LDAP_URL"),
		BaseDN:          os.Getenv("DIRVERIFY_BASE_DN"),
		ServiceDN:       os.Getenv("DIRVERIFY_SERVICE_DN"),
		ServicePassword: os.Getenv("DIRVERIFY_SERVICE_PASSWORD"),
		InsecureTLS:     os.Getenv("DIRVERIFY_INSECURE_TLS") == "true",
		DialTimeout:     envDuration("DIRVERIFY_DIAL_TIMEOUT", 10*time.Second),
		SizeLimit:       envInt("DIRVERIFY_SIZE_LIMIT", 50),
		TimeLimitSecs:   envInt("DIRVERIFY_TIME_LIMIT", 10),
	}

	if origins := os.Getenv("DIRVERIFY_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.ServerURL == "" {
		return cfg, errors.New("DIRVERIFY_LDAP_URL is required")
	}
	if cfg.BaseDN == "" {
		return cfg, errors.New("DIRVERIFY_BASE_DN is required")
	}
	if cfg.ServiceDN == "" {
		return cfg, errors.New("DIRVERIFY_SERVICE_DN is required")
	}
	if cfg.ServicePassword == "" {
		return cfg, errors.New("DIRVERIFY_SERVICE_PASSWORD is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
