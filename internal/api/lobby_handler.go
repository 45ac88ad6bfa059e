package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/switcher-game/internal/middleware"
	"github.com/wfunc/switcher-game/internal/service"
)

// LobbyHandler 大厅与对局处理器
type LobbyHandler struct {
	lobby service.LobbyService
}

// NewLobbyHandler 创建大厅处理器
func NewLobbyHandler(lobby service.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobby: lobby}
}

// SetNameRequest 设置玩家名请求
type SetNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// LobbyListResponse 大厅列表
type LobbyListResponse struct {
	Items    []*service.LobbySummary `json:"items"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// ListQuery 大厅列表查询参数
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SetName 注册玩家
// @Summary 注册玩家
// @Description 以名字注册玩家并签发令牌
// @Tags Player
// @Accept json
// @Produce json
// @Param request body SetNameRequest true "玩家名"
// @Success 201 {object} service.Registration
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/name [post]
func (h *LobbyHandler) SetName(c *gin.Context) {
	var req SetNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reg, err := h.lobby.RegisterPlayer(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// ListGames 大厅列表
// @Summary 列出等待中的对局
// @Tags Lobby
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} LobbyListResponse
// @Router /api/lobby [get]
func (h *LobbyHandler) ListGames(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}

	items, total, err := h.lobby.ListGames(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LobbyListResponse{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize})
}

// CreateGame 创建对局
// @Summary 创建对局
// @Description 创建者自动入座并成为房主
// @Tags Lobby
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateGameRequest true "对局参数"
// @Success 201 {object} service.GameView
// @Failure 412 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/lobby [post]
func (h *LobbyHandler) CreateGame(c *gin.Context) {
	var req service.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	playerID, _ := middleware.GetPlayerID(c)
	view, err := h.lobby.CreateGame(c.Request.Context(), playerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetGame 查询对局
// @Summary 查询对局
// @Tags Lobby
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} service.GameView
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/lobby/{id} [get]
func (h *LobbyHandler) GetGame(c *gin.Context) {
	gameID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.lobby.GetGame(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// JoinGame 加入对局
// @Summary 加入对局
// @Tags Lobby
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.GameView
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /api/lobby/{id}/join [post]
func (h *LobbyHandler) JoinGame(c *gin.Context) {
	h.gameAction(c, h.lobby.JoinGame)
}

// LeaveGame 离开对局
// @Summary 离开对局
// @Tags Lobby
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.GameView
// @Router /api/lobby/{id}/exit [post]
func (h *LobbyHandler) LeaveGame(c *gin.Context) {
	h.gameAction(c, h.lobby.LeaveGame)
}

// StartGame 开始对局
// @Summary 房主开始对局
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.GameView
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 412 {object} apperrors.ErrorResponse
// @Router /api/lobby/{id}/start [post]
func (h *LobbyHandler) StartGame(c *gin.Context) {
	h.gameAction(c, h.lobby.StartGame)
}

// EndTurn 结束回合
// @Summary 当前玩家结束回合
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.GameView
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/lobby/{id}/turn [post]
func (h *LobbyHandler) EndTurn(c *gin.Context) {
	h.gameAction(c, h.lobby.EndTurn)
}

// DealCards 发移动卡
// @Summary 为调用者发 3 张移动卡
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.HandView
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /api/lobby/{id}/deal_cards [post]
func (h *LobbyHandler) DealCards(c *gin.Context) {
	h.handAction(c, h.lobby.DealMovementCards)
}

// RefillFigures 补满图形手牌
// @Summary 从调用者的图形牌堆补满手牌
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.HandView
// @Router /api/lobby/{id}/figures [post]
func (h *LobbyHandler) RefillFigures(c *gin.Context) {
	h.handAction(c, h.lobby.RefillFigures)
}

// Hand 查询手牌
// @Summary 查询调用者的手牌
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Param id path int true "对局ID"
// @Success 200 {object} service.HandView
// @Router /api/lobby/{id}/hand [get]
func (h *LobbyHandler) Hand(c *gin.Context) {
	h.handAction(c, h.lobby.PlayerHand)
}

type gameFunc func(ctx context.Context, gameID, playerID uint) (*service.GameView, error)

type handFunc func(ctx context.Context, gameID, playerID uint) (*service.HandView, error)

func (h *LobbyHandler) gameAction(c *gin.Context, fn gameFunc) {
	gameID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	playerID, _ := middleware.GetPlayerID(c)
	view, err := fn(c.Request.Context(), gameID, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *LobbyHandler) handAction(c *gin.Context, fn handFunc) {
	gameID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	playerID, _ := middleware.GetPlayerID(c)
	hand, err := fn(c.Request.Context(), gameID, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hand)
}
