package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/switcher-game/internal/config"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/events"
	"go.uber.org/zap"
)

// Message 推送给客户端的消息
type Message struct {
	Type      string          `json:"type"`
	GameID    uint            `json:"game_id"`
	PlayerID  uint            `json:"player_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 客户端可以发送的消息类型
const (
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

type roomMessage struct {
	gameID uint
	data   []byte
}

// Hub 按对局分组管理 WebSocket 连接，并把对局事件推送给同一对局的连接
type Hub struct {
	// 对局ID -> 连接集合
	rooms map[uint]map[*Client]struct{}
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage

	cfg    config.WebSocketConfig
	logger *zap.Logger
	done   chan struct{}
}

// NewHub 创建Hub
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
		cfg:        cfg,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run 运行Hub事件循环，ctx 取消后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)

		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("WebSocket Hub已停止")
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.GameID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.GameID] = room
	}
	room[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("客户端已连接",
		zap.String("client_id", client.ID),
		zap.Uint("game_id", client.GameID),
		zap.Uint("player_id", client.PlayerID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.GameID]
	if ok {
		if _, exists := room[client]; exists {
			delete(room, client)
			close(client.Send)
		}
		if len(room) == 0 {
			delete(h.rooms, client.GameID)
		}
	}
	h.mu.Unlock()

	if ok {
		h.logger.Info("客户端已断开",
			zap.String("client_id", client.ID),
			zap.Uint("game_id", client.GameID))
	}
}

func (h *Hub) broadcastToRoom(msg roomMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[msg.gameID] {
		select {
		case client.Send <- msg.data:
		default:
			// 发送缓冲区已满，断开慢连接
			delete(h.rooms[msg.gameID], client)
			close(client.Send)
			h.logger.Warn("发送缓冲区已满，断开客户端", zap.String("client_id", client.ID))
		}
	}
	if len(h.rooms[msg.gameID]) == 0 {
		delete(h.rooms, msg.gameID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for gameID, room := range h.rooms {
		for client := range room {
			close(client.Send)
		}
		delete(h.rooms, gameID)
	}
}

// Register 注册连接，Hub 已停止时返回 false
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish 把对局事件推送给订阅该对局的所有连接
func (h *Hub) Publish(ctx context.Context, evt events.GameEvent) error {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat)
	}
	payload, err := json.Marshal(Message{
		Type:      string(evt.Type),
		GameID:    evt.GameID,
		PlayerID:  evt.PlayerID,
		Data:      data,
		Timestamp: evt.Timestamp,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat)
	}

	select {
	case <-h.done:
		return apperrors.New(apperrors.ErrWebSocketClosed, "hub stopped")
	default:
	}

	select {
	case h.broadcast <- roomMessage{gameID: evt.GameID, data: payload}:
		return nil
	case <-h.done:
		return apperrors.New(apperrors.ErrWebSocketClosed, "hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomSize 对局当前的连接数
func (h *Hub) RoomSize(gameID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// ClientCount 全部连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}

func (h *Hub) writeWait() time.Duration {
	if h.cfg.WriteTimeout > 0 {
		return h.cfg.WriteTimeout
	}
	return 10 * time.Second
}

func (h *Hub) pongWait() time.Duration {
	if h.cfg.PongTimeout > 0 {
		return h.cfg.PongTimeout
	}
	return 60 * time.Second
}

// ping 周期必须小于 pong 超时
func (h *Hub) pingPeriod() time.Duration {
	period := h.cfg.PingInterval
	if period <= 0 || period >= h.pongWait() {
		period = h.pongWait() * 9 / 10
	}
	return period
}

func (h *Hub) maxMessageSize() int64 {
	if h.cfg.MaxMessageSize > 0 {
		return h.cfg.MaxMessageSize
	}
	return 4096
}
