package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/switcher-game/internal/config"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/middleware"
	"github.com/wfunc/switcher-game/internal/service"
	ws "github.com/wfunc/switcher-game/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler 对局事件推送
type WebSocketHandler struct {
	hub      *ws.Hub
	lobby    service.LobbyService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *ws.Hub, lobby service.LobbyService, cfg config.WebSocketConfig, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		lobby: lobby,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    cfg.ReadBufferSize,
			WriteBufferSize:   cfg.WriteBufferSize,
			EnableCompression: cfg.EnableCompression,
			CheckOrigin: func(r *http.Request) bool {
				// 令牌已经校验过身份
				return true
			},
		},
		logger: logger,
	}
}

// GameEvents 订阅对局事件，只有对局中的玩家可以订阅
// @Summary 订阅对局事件
// @Tags Game
// @Param id path int true "对局ID"
// @Param token query string true "玩家令牌"
// @Router /ws/lobby/{id} [get]
func (h *WebSocketHandler) GameEvents(c *gin.Context) {
	gameID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	playerID, _ := middleware.GetPlayerID(c)

	view, err := h.lobby.GetGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !seated(view, playerID) {
		respondError(c, apperrors.Newf(apperrors.ErrPermissionDenied, "player %d not in game %d", playerID, gameID))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.Uint("player_id", playerID),
			zap.Error(err))
		return
	}

	client := h.hub.Serve(conn, gameID, playerID)
	if client == nil {
		return
	}
	h.logger.Info("WebSocket连接建立",
		zap.String("client_id", client.ID),
		zap.Uint("game_id", gameID),
		zap.Uint("player_id", playerID))
}

func seated(view *service.GameView, playerID uint) bool {
	for _, p := range view.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
