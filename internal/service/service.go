package service

import (
	"github.com/wfunc/switcher-game/internal/config"
	"github.com/wfunc/switcher-game/internal/events"
	"github.com/wfunc/switcher-game/internal/repository"
	"github.com/wfunc/switcher-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Lobby LobbyService
	JWT   *utils.JWTManager
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, cfg *config.Config, publisher events.Publisher, log *zap.Logger) *Services {
	// 初始化仓储
	repos := repository.NewManager(db)

	// 初始化JWT管理器
	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		cfg.Security.JWT.Issuer,
		cfg.Security.JWT.Expiry(),
	)

	return &Services{
		Lobby: NewLobbyService(repos, jwtManager, publisher, cfg.Game, log),
		JWT:   jwtManager,
	}
}
