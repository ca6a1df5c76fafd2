package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3, cfg.ConflictMaxRetries)
	assert.Equal(t, "0 8 * * *", cfg.DebtReminderCron)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"*"}, cfg.OrigenesCORS())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CIERRE_REPORT_EMAIL", "dueno@cyberia.pe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "dueno@cyberia.pe", cfg.CierreReportEmail)
}

func TestOrigenesCORS(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://caja.cyberia.pe, https://admin.cyberia.pe,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://caja.cyberia.pe", "https://admin.cyberia.pe"}, cfg.OrigenesCORS())
}
