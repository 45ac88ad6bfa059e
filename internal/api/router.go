package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/switcher-game/internal/config"
	"github.com/wfunc/switcher-game/internal/database"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/middleware"
	"github.com/wfunc/switcher-game/internal/service"
	ws "github.com/wfunc/switcher-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	lobbyHandler   *LobbyHandler
	wsHandler      *WebSocketHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, hub *ws.Hub, cfg *config.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		lobbyHandler:   NewLobbyHandler(services.Lobby),
		wsHandler:      NewWebSocketHandler(hub, services.Lobby, cfg.WebSocket, log),
		authMiddleware: middleware.NewAuthMiddleware(services.JWT),
		log:            log,
	}
	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	api := r.engine.Group("/api")
	{
		api.POST("/name", r.lobbyHandler.SetName)

		lobby := api.Group("/lobby")
		{
			lobby.GET("", r.lobbyHandler.ListGames)
			lobby.GET("/:id", r.lobbyHandler.GetGame)

			// 需要玩家令牌
			authed := lobby.Group("")
			authed.Use(r.authMiddleware.RequirePlayer())
			{
				authed.POST("", r.lobbyHandler.CreateGame)
				authed.POST("/:id/join", r.lobbyHandler.JoinGame)
				authed.POST("/:id/exit", r.lobbyHandler.LeaveGame)
				authed.POST("/:id/start", r.lobbyHandler.StartGame)
				authed.POST("/:id/turn", r.lobbyHandler.EndTurn)
				authed.POST("/:id/deal_cards", r.lobbyHandler.DealCards)
				authed.POST("/:id/figures", r.lobbyHandler.RefillFigures)
				authed.GET("/:id/hand", r.lobbyHandler.Hand)
			}
		}
	}

	// WebSocket路由，令牌通过 token 查询参数传递
	wsGroup := r.engine.Group("/ws")
	wsGroup.Use(r.authMiddleware.RequirePlayer())
	{
		wsGroup.GET("/lobby/:id", r.wsHandler.GameEvents)
	}

	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		err := apperrors.New(apperrors.ErrNotFound, "接口不存在")
		c.JSON(http.StatusNotFound, apperrors.NewErrorResponse(err, c.GetHeader("X-Request-ID")))
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if err := database.Ping(r.db); err != nil {
		r.log.Warn("健康检查失败", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "数据库不可用",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Handler 返回 http.Handler，供 http.Server 使用
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
