package repository

import (
	"context"
	"errors"

	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/models"
	"gorm.io/gorm"
)

// PlayerRepository 玩家仓储接口
type PlayerRepository interface {
	BaseRepository
	WithTx(tx *gorm.DB) PlayerRepository
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id uint) (*models.Player, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Player, error)
	Delete(ctx context.Context, id uint) error
}

type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository 创建玩家仓储
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{BaseRepo: &BaseRepo{db: db}}
}

func (r *playerRepo) WithTx(tx *gorm.DB) PlayerRepository {
	return &playerRepo{BaseRepo: &BaseRepo{db: tx}}
}

func (r *playerRepo) Create(ctx context.Context, player *models.Player) error {
	if err := r.db.WithContext(ctx).Create(player).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建玩家")
	}
	return nil
}

func (r *playerRepo) FindByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).First(&player, id).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrNotFound, "player")
	}
	return &player, nil
}

func (r *playerRepo) FindByIdentifier(ctx context.Context, identifier string) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&player).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrNotFound, "player")
	}
	return &player, nil
}

func (r *playerRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Player{}, id).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseDelete, "删除玩家")
	}
	return nil
}

// notFoundOr 把 gorm.ErrRecordNotFound 转成指定错误码，其余归为查询失败
func notFoundOr(err error, code apperrors.ErrorCode, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(code, what)
	}
	return apperrors.Wrap(err, apperrors.ErrDatabaseQuery, what)
}
