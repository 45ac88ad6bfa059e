package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/switcher-game/internal/config"
	"github.com/wfunc/switcher-game/internal/events"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(config.WebSocketConfig{}, zap.NewNop())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func TestHubPublishToRoom(t *testing.T) {
	hub := startHub(t)

	inRoom := NewClient(hub, nil, 1, 10)
	otherRoom := NewClient(hub, nil, 2, 20)
	require.True(t, hub.Register(inRoom))
	require.True(t, hub.Register(otherRoom))

	evt := events.NewGameEvent(events.PlayerJoined, 1, 11, map[string]int{"players": 2})
	require.NoError(t, hub.Publish(context.Background(), evt))

	select {
	case raw := <-inRoom.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "player_joined", msg.Type)
		assert.Equal(t, uint(1), msg.GameID)
		assert.Equal(t, uint(11), msg.PlayerID)
		assert.JSONEq(t, `{"players":2}`, string(msg.Data))
	case <-time.After(time.Second):
		t.Fatal("房间内客户端没有收到事件")
	}

	assert.Empty(t, otherRoom.Send, "其他对局不应收到事件")
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, 5, 1)
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.RoomSize(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok, "注销后发送通道应关闭")
}

func TestHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(config.WebSocketConfig{}, zap.NewNop())
	go hub.Run(ctx)
	cancel()
	<-hub.done

	assert.False(t, hub.Register(NewClient(hub, nil, 1, 1)))
	err := hub.Publish(context.Background(), events.NewGameEvent(events.TurnAdvanced, 1, 0, nil))
	assert.Error(t, err)
}

func TestServeOverWebSocket(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, 7, 3)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(7) == 1 }, time.Second, 10*time.Millisecond)

	t.Run("ping得到pong", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
		var msg Message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, MessageTypePong, msg.Type)
		assert.Equal(t, uint(7), msg.GameID)
	})

	t.Run("收到对局事件", func(t *testing.T) {
		require.NoError(t, hub.Publish(context.Background(), events.NewGameEvent(events.TurnAdvanced, 7, 3, nil)))
		var msg Message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, string(events.TurnAdvanced), msg.Type)
	})

	t.Run("断开后离开房间", func(t *testing.T) {
		conn.Close()
		require.Eventually(t, func() bool { return hub.RoomSize(7) == 0 }, 2*time.Second, 10*time.Millisecond)
	})
}
