package repository

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/game"
	"github.com/wfunc/switcher-game/internal/logger"
	"github.com/wfunc/switcher-game/internal/models"
	"gorm.io/gorm"
)

// GameRepository 对局仓储接口，以快照形式保存整个对局聚合
type GameRepository interface {
	BaseRepository
	WithTx(tx *gorm.DB) GameRepository
	Create(ctx context.Context, g *game.Game) error
	Save(ctx context.Context, g *game.Game) error
	FindByID(ctx context.Context, id uint, opts ...game.Option) (*game.Game, error)
	ListOpen(ctx context.Context, pagination *Pagination) ([]*models.Lobby, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建对局仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{BaseRepo: &BaseRepo{db: db}}
}

func (r *gameRepo) WithTx(tx *gorm.DB) GameRepository {
	return &gameRepo{BaseRepo: &BaseRepo{db: tx}}
}

// Create 插入新对局并回填 g.ID
func (r *gameRepo) Create(ctx context.Context, g *game.Game) error {
	start := time.Now()
	lobby, err := toLobby(g)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Create(lobby).Error
	logger.LogDatabaseOperation("create", lobby.TableName(), time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建对局")
	}
	g.ID = lobby.ID
	return nil
}

// Save 覆盖保存对局快照
func (r *gameRepo) Save(ctx context.Context, g *game.Game) error {
	start := time.Now()
	lobby, err := toLobby(g)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&models.Lobby{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name":         lobby.Name,
			"min_players":  lobby.MinPlayers,
			"max_players":  lobby.MaxPlayers,
			"started":      lobby.Started,
			"host_id":      lobby.HostID,
			"player_count": lobby.PlayerCount,
			"current_turn": lobby.CurrentTurn,
			"state":        lobby.State,
		})
	logger.LogDatabaseOperation("save", lobby.TableName(), time.Since(start), result.Error)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrDatabaseUpdate, "保存对局")
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", g.ID)
	}
	return nil
}

// FindByID 读取并还原对局
func (r *gameRepo) FindByID(ctx context.Context, id uint, opts ...game.Option) (*game.Game, error) {
	var lobby models.Lobby
	if err := r.db.WithContext(ctx).First(&lobby, id).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrGameNotFound, "game")
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(lobby.State), &snap); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidSnapshot, "解析对局快照")
	}
	return game.Restore(snap, append(opts, game.WithID(lobby.ID))...)
}

// ListOpen 分页列出尚未开始的对局
func (r *gameRepo) ListOpen(ctx context.Context, pagination *Pagination) ([]*models.Lobby, error) {
	var lobbies []*models.Lobby
	open := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Lobby{}).Where("started = ?", false)
	}
	if err := open().Count(&pagination.Total).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "统计对局")
	}
	if err := open().Scopes(Paginate(pagination)).Order("id ASC").Find(&lobbies).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询对局")
	}
	return lobbies, nil
}

// Count 统计全部未删除对局
func (r *gameRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Lobby{}).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "统计对局")
	}
	return count, nil
}

// Delete 删除对局（软删除）
func (r *gameRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Lobby{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrDatabaseDelete, "删除对局")
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrGameNotFound, "id=%d", id)
	}
	return nil
}

func toLobby(g *game.Game) (*models.Lobby, error) {
	state, err := json.Marshal(g.Snapshot())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidSnapshot, "序列化对局快照")
	}
	return &models.Lobby{
		BaseModel:   models.BaseModel{ID: g.ID},
		Name:        g.Name,
		MinPlayers:  g.MinPlayers,
		MaxPlayers:  g.MaxPlayers,
		Started:     g.Started,
		HostID:      g.HostID,
		PlayerCount: g.PlayerCount(),
		CurrentTurn: g.CurrentTurn,
		State:       string(state),
	}, nil
}
