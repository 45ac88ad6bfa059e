package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/switcher-game/internal/logger"
	"go.uber.org/zap"
)

// Client 一个订阅对局事件的连接
type Client struct {
	ID       string
	GameID   uint
	PlayerID uint
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte

	// 对客户端请求的直接回复，不经过Hub
	control chan []byte
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, gameID, playerID uint) *Client {
	return &Client{
		ID:       uuid.New().String(),
		GameID:   gameID,
		PlayerID: playerID,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		control:  make(chan []byte, 16),
	}
}

// Serve 注册连接并启动读写协程
func (h *Hub) Serve(conn *websocket.Conn, gameID, playerID uint) *Client {
	client := NewClient(h, conn, gameID, playerID)
	if !h.Register(client) {
		conn.Close()
		return nil
	}
	go client.WritePump()
	go client.ReadPump()
	return client
}

// ReadPump 读取消息，连接只接受 ping
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	pongWait := c.Hub.pongWait()
	c.Conn.SetReadLimit(c.Hub.maxMessageSize())
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	writeWait := c.Hub.writeWait()
	ticker := time.NewTicker(c.Hub.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case message := <-c.control:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.reply(MessageTypeError, map[string]string{"error": "消息格式错误"})
		return
	}

	logger.LogWebSocketMessage("receive", msg.Type, msg.Data)

	switch msg.Type {
	case MessageTypePing:
		c.reply(MessageTypePong, nil)
	default:
		c.reply(MessageTypeError, map[string]string{"error": "不支持的消息类型: " + msg.Type})
	}
}

// reply 直接回复当前连接，缓冲区满时丢弃
func (c *Client) reply(msgType string, data interface{}) {
	raw, _ := json.Marshal(data)
	payload, _ := json.Marshal(Message{
		Type:      msgType,
		GameID:    c.GameID,
		PlayerID:  c.PlayerID,
		Data:      raw,
		Timestamp: time.Now().UnixMilli(),
	})
	select {
	case c.control <- payload:
	default:
	}
}
