package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DIRVERIFY_LDAP_URL", "ldaps://ldap.example.com:636")
	t.Setenv("DIRVERIFY_BASE_DN", "dc=example,dc=com")
	t.Setenv("DIRVERIFY_SERVICE_DN", "cn=svc,dc=example,dc=com")
	t.Setenv("DIRVERIFY_SERVICE_PASSWORD", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, 50, cfg.SizeLimit)
	assert.Equal(t, 10, cfg.TimeLimitSecs)
	assert.False(t, cfg.InsecureTLS)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DIRVERIFY_ADDR", ":9090")
	t.Setenv("DIRVERIFY_DIAL_TIMEOUT", "30s")
	t.Setenv("DIRVERIFY_SIZE_LIMIT", "200")
	t.Setenv("DIRVERIFY_TIME_LIMIT", "20")
	t.Setenv("DIRVERIFY_INSECURE_TLS", "true")
	t.Setenv("DIRVERIFY_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.DialTimeout)
	assert.Equal(t, 200, cfg.SizeLimit)
	assert.Equal(t, 20, cfg.TimeLimitSecs)
	assert.True(t, cfg.InsecureTLS)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestFromEnvMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DIRVERIFY_SERVICE_PASSWORD", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DIRVERIFY_SERVICE_PASSWORD")
}

func TestFromEnvInvalidNumbersFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("DIRVERIFY_SIZE_LIMIT", "not-a-number")
	t.Setenv("DIRVERIFY_TIME_LIMIT", "-5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.SizeLimit)
	assert.Equal(t, 10, cfg.TimeLimitSecs)
}
