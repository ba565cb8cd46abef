package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("STARTING_BALANCE", "5000")
	t.Setenv("ADMIN_UID", "1234")
	t.Setenv("OTEL_ENABLED", "TRUE")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, int64(5000), cfg.StartingBalance)
	assert.Equal(t, int64(1234), cfg.AdminUID)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.LotteryTimezone)
	assert.Equal(t, "0 18 * * *", cfg.LotteryDrawCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
discord_token: from-file
database_url: postgres://file:5432
log_channel_id: "42"
lottery_draw_cron: "30 20 * * *"
environment: production
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOTTERY_DRAW_CRON", "0 9 * * *")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, "42", cfg.LogChannelID)
	assert.Equal(t, "0 9 * * *", cfg.LotteryDrawCron)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Environment = "development"
	assert.ErrorContains(t, cfg.validate(), "DISCORD_TOKEN")

	cfg.DiscordToken = "token"
	assert.ErrorContains(t, cfg.validate(), "DATABASE_URL")

	cfg.DatabaseURL = "postgres://localhost"
	cfg.StartingBalance = -1
	assert.Error(t, cfg.validate())

	assert.NoError(t, NewTestConfig().validate())
}

func TestSetTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	custom := NewTestConfig()
	custom.StartingBalance = 77
	SetTestConfig(custom)
	assert.Same(t, custom, Get())
}
