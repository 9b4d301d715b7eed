package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		AppEnv:                 "production",
		AppBaseURL:             "https://app.caresync.example",
		DatabaseURL:            "postgres://localhost:5432/caresync",
		RedisURL:               "redis://localhost:6379",
		JWTHS256Secret:         "c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0LTEyMzQ=",
		JWTIssuer:              "caresync-api",
		JWTClockSkewSeconds:    60,
		SessionTTLHours:        24,
		OTELSamplingRatio:      0.1,
		RateLimitPerUserPerMin: 120,
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()

	err := cfg.Validate()

	assert.NoError(t, err)
}

func TestConfig_Validate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestConfig_Validate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTHS256Secret = ""

	err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_HS256_SECRET")
}

func TestConfig_Validate_TrimsBaseURLSlash(t *testing.T) {
	cfg := validConfig()
	cfg.AppBaseURL = "https://app.caresync.example/"

	err := cfg.Validate()

	assert.NoError(t, err)
	assert.Equal(t, "https://app.caresync.example", cfg.AppBaseURL)
}

func TestConfig_Validate_NegativeClockSkew(t *testing.T) {
	cfg := validConfig()
	cfg.JWTClockSkewSeconds = -1

	err := cfg.Validate()

	assert.Error(t, err)
}

func TestConfig_Validate_ZeroSessionTTL(t *testing.T) {
	cfg := validConfig()
	cfg.SessionTTLHours = 0

	err := cfg.Validate()

	assert.Error(t, err)
}

func TestConfig_Validate_SamplingRatioOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.OTELSamplingRatio = 1.5

	err := cfg.Validate()

	assert.Error(t, err)
}

func TestConfig_Validate_PartialGmailCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.GmailClientID = "client-id"

	err := cfg.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_CLIENT_ID")
}

func TestConfig_GmailConfigured(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.GmailConfigured())

	cfg.GmailClientID = "client-id"
	cfg.GmailClientSecret = "client-secret"
	cfg.GmailRefreshToken = "refresh-token"

	assert.True(t, cfg.GmailConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_IsDev(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.IsDev())

	cfg.AppEnv = "dev"
	assert.True(t, cfg.IsDev())

	cfg.AppEnv = "development"
	assert.True(t, cfg.IsDev())
}
