package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/thedoughmonster/doughmonster-worker-sub001/errors"
)

func clearRequiredEnv(t *testing.T) {
	t.Helper()
	for _, key := range requiredKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearRequiredEnv(t)
	t.Setenv("VENDOR_BASE_URL", "https://api.example.com")
	t.Setenv("VENDOR_CLIENT_ID", "client-1")
	t.Setenv("VENDOR_CLIENT_SECRET", "secret-1")
	t.Setenv("RESTAURANT_EXTERNAL_ID", "rest-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.VendorBaseURL)
	assert.Equal(t, "client-1", cfg.VendorClientID)

	// Defaults fill everything not supplied.
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.Equal(t, 128, cfg.CompositionCacheCapacity)
	assert.Equal(t, 10*time.Second, cfg.ComposeTimeBudget())
}

func TestLoadReportsAllMissingSettings(t *testing.T) {
	clearRequiredEnv(t)
	t.Setenv("VENDOR_BASE_URL", "https://api.example.com")

	_, err := Load()
	require.Error(t, err)
	require.True(t, gwerrors.IsConfigError(err))

	cfgErr := err.(*gwerrors.ConfigError)
	assert.ElementsMatch(t, []string{
		"VENDOR_CLIENT_ID",
		"VENDOR_CLIENT_SECRET",
		"RESTAURANT_EXTERNAL_ID",
	}, cfgErr.Missing)
}

func TestValidateCollectsEveryMissingField(t *testing.T) {
	cfg := &GatewayConfig{}
	err := cfg.Validate()
	require.Error(t, err)

	cfgErr := err.(*gwerrors.ConfigError)
	assert.Len(t, cfgErr.Missing, 4)
}

func TestTokenURL(t *testing.T) {
	cfg := &GatewayConfig{
		VendorBaseURL:   "https://api.example.com/",
		VendorTokenPath: "/authentication/v1/authentication/login",
	}
	assert.Equal(t,
		"https://api.example.com/authentication/v1/authentication/login",
		cfg.TokenURL())
}
