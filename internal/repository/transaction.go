package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transaction 事务中的仓储集合
type Transaction struct {
	tx *gorm.DB

	players PlayerRepository
	games   GameRepository
}

// WithTransaction 在事务中执行函数，fn 返回错误或 panic 时回滚
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *Transaction) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Transaction{tx: tx})
	})
}

// GetDB 获取事务连接
func (t *Transaction) GetDB() *gorm.DB {
	return t.tx
}

// Players 事务中的玩家仓储
func (t *Transaction) Players() PlayerRepository {
	if t.players == nil {
		t.players = NewPlayerRepository(t.tx)
	}
	return t.players
}

// Games 事务中的对局仓储
func (t *Transaction) Games() GameRepository {
	if t.games == nil {
		t.games = NewGameRepository(t.tx)
	}
	return t.games
}
