package service

import (
	"context"

	"github.com/wfunc/switcher-game/internal/game"
)

// LobbyService 大厅与对局服务接口
type LobbyService interface {
	// 玩家
	RegisterPlayer(ctx context.Context, name string) (*Registration, error)

	// 大厅
	CreateGame(ctx context.Context, hostID uint, req *CreateGameRequest) (*GameView, error)
	JoinGame(ctx context.Context, gameID, playerID uint) (*GameView, error)
	LeaveGame(ctx context.Context, gameID, playerID uint) (*GameView, error)
	GetGame(ctx context.Context, gameID uint) (*GameView, error)
	ListGames(ctx context.Context, page, pageSize int) ([]*LobbySummary, int64, error)

	// 对局
	StartGame(ctx context.Context, gameID, playerID uint) (*GameView, error)
	EndTurn(ctx context.Context, gameID, playerID uint) (*GameView, error)
	DealMovementCards(ctx context.Context, gameID, playerID uint) (*HandView, error)
	RefillFigures(ctx context.Context, gameID, playerID uint) (*HandView, error)
	PlayerHand(ctx context.Context, gameID, playerID uint) (*HandView, error)
}

// Registration 玩家注册结果
type Registration struct {
	PlayerID   uint   `json:"id"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
}

// CreateGameRequest 创建对局请求
type CreateGameRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=64"`
	MaxPlayers int    `json:"max_players" binding:"required,min=2,max=4"`
	MinPlayers int    `json:"min_players" binding:"required,min=2,max=4"`
}

// PlayerView 对外公开的玩家状态，移动卡只给出张数
type PlayerView struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	TurnSlot      int               `json:"turn_slot"`
	MovementCards int               `json:"movement_cards"`
	FigureHand    []game.FigureCard `json:"figure_hand"`
	FigureDeck    int               `json:"figure_deck"`
}

// GameView 对局状态
type GameView struct {
	ID            uint         `json:"id"`
	Name          string       `json:"name"`
	MaxPlayers    int          `json:"max_players"`
	MinPlayers    int          `json:"min_players"`
	Started       bool         `json:"started"`
	HostID        uint         `json:"host_id"`
	CurrentTurn   int          `json:"current_turn"`
	CurrentPlayer *PlayerView  `json:"current_player,omitempty"`
	Players       []PlayerView `json:"players"`
	Board         []game.Tile  `json:"board,omitempty"`
	PoolSize      int          `json:"pool_size"`
	Deleted       bool         `json:"deleted,omitempty"`
}

// HandView 玩家自己的手牌
type HandView struct {
	GameID     uint                `json:"game_id"`
	PlayerID   uint                `json:"player_id"`
	Movement   []game.MovementCard `json:"movement"`
	FigureHand []game.FigureCard   `json:"figure_hand"`
	FigureDeck int                 `json:"figure_deck"`
}

// LobbySummary 大厅列表项
type LobbySummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	PlayerCount int    `json:"player_count"`
	Started     bool   `json:"started"`
	HostID      uint   `json:"host_id"`
}
