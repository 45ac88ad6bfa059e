package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/switcher-game/internal/config"
	"github.com/wfunc/switcher-game/internal/models"
	"go.uber.org/zap"
)

func TestOpenAndMigrateSQLiteFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "switcher.db")
	db, err := Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.Player{}))
	assert.True(t, db.Migrator().HasTable(&models.Lobby{}))
	assert.NoError(t, Ping(db))

	// 迁移结束后锁文件应被删除
	assert.NoFileExists(t, dsn+".migration.lock")
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestPingNil(t *testing.T) {
	assert.Error(t, Ping(nil))
}
