package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Game.MinPlayers)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 24*time.Hour, cfg.Security.JWT.Expiry())
	assert.Equal(t, "switcher.game", cfg.Events.NATS.SubjectPrefix)
	assert.Equal(t, 2*time.Second, cfg.Events.NATS.ReconnectWait)
	assert.False(t, cfg.Events.NATS.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SWITCHER_GAME_RANDOM_SEED", "99")
	t.Setenv("SWITCHER_EVENTS_NATS_ENABLED", "true")

	cfg, err := Load(writeConfig(t, "game:\n  random_seed: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Game.RandomSeed)
	assert.True(t, cfg.Events.NATS.Enabled)
}

func TestValidate(t *testing.T) {
	t.Run("人数范围无效", func(t *testing.T) {
		_, err := Load(writeConfig(t, "game:\n  min_players: 4\n  max_players: 3\n"))
		assert.Error(t, err)
	})

	t.Run("最多人数超过4", func(t *testing.T) {
		_, err := Load(writeConfig(t, "game:\n  max_players: 6\n"))
		assert.Error(t, err)
	})

	t.Run("缺少密钥", func(t *testing.T) {
		_, err := Load(writeConfig(t, "security:\n  jwt:\n    secret: \"\"\n"))
		assert.Error(t, err)
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
