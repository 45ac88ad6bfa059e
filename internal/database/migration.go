package database

import (
	"fmt"

	"github.com/wfunc/switcher-game/internal/logger"
	"github.com/wfunc/switcher-game/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&models.Player{},
		&models.Lobby{},
	}
}

// AutoMigrate 迁移全局数据库
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	return Migrate(DB)
}

// Migrate 迁移表结构，SQLite 文件库在锁文件保护下执行
func Migrate(db *gorm.DB) error {
	if path := sqliteFilePath(db); path != "" {
		lockFile, err := acquireMigrationLock(path)
		if err != nil {
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	logger.Info("开始数据库迁移...")
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败", zap.String("model", fmt.Sprintf("%T", model)), zap.Error(err))
			return err
		}
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_lobbies_open ON lobbies(started, deleted_at)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_lobbies_open"), zap.Error(err))
	}

	logger.Info("数据库迁移完成")
	return nil
}
