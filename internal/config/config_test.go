package config

import (
	"testing"
	"time"

	"dataportal/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Server.PreviewRows)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxUploadBytes())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "dataportal_session", cfg.Session.CookieName)
	assert.Equal(t, 1.0, cfg.Inference.NumericThreshold)
	assert.False(t, cfg.Inference.LenientNumbers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LENIENT_NUMBERS", "true")
	t.Setenv("NUMERIC_THRESHOLD", "0.9")
	t.Setenv("PREVIEW_ROWS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Upload.MaxUploadMB)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Inference.LenientNumbers)
	assert.Equal(t, 0.9, cfg.Inference.NumericThreshold)
	assert.Equal(t, 1000, cfg.Server.PreviewRows, "unparseable values fall back to the default")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("NUMERIC_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, validateConfig(Default()))
}
