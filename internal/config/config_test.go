package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CSP_API_BASE_URL", "https://api.example.test/dev")
	t.Setenv("CSP_REQUEST_TIMEOUT", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test/dev", cfg.APIBaseURL)
	assert.Equal(t, "https://api.example.test/dev", cfg.IdentityBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ".storefront", cfg.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.RefreshMargin)
	assert.Equal(t, time.Minute, cfg.PendingOrderInterval)
}

func TestLoad_RequiresBaseURL(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_SeparateIdentityHost(t *testing.T) {
	t.Setenv("CSP_API_BASE_URL", "https://api.example.test")
	t.Setenv("CSP_IDENTITY_BASE_URL", "https://id.example.test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://id.example.test", cfg.IdentityBaseURL)
}
