package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_SECRET", "segredo-de-teste")
	t.Setenv("ADMIN_NOTIFY_EMAILS", "ops@agency.dev, sales@agency.dev")
	t.Setenv("ADAPTER_TIMEOUT", "3s")
	t.Setenv("ADMIN_BASE_URL", "https://agency.dev/admin/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.LeadRateLimit)
	assert.Equal(t, time.Hour, cfg.LeadRateWindow)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 3*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, []string{"ops@agency.dev", "sales@agency.dev"}, cfg.AdminNotifyEmails)
	assert.Equal(t, "https://agency.dev/admin", cfg.AdminBaseURL)
	assert.Equal(t, "manual", cfg.WhatsAppProvider)
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_url: postgres://file/db\njwt_secret: abc\nlead_rate_limit: 5\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.LeadRateLimit)
}

func TestValidateRequiresDatabase(t *testing.T) {
	cfg := defaultConfig()
	cfg.JWTSecret = "x"
	assert.Error(t, cfg.Validate())
}
