package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Type 对局事件类型
type Type string

const (
	GameCreated     Type = "game_created"
	GameDeleted     Type = "game_deleted"
	GameStarted     Type = "game_started"
	GameStopped     Type = "game_stopped"
	PlayerJoined    Type = "player_joined"
	PlayerLeft      Type = "player_left"
	HostChanged     Type = "host_changed"
	TurnAdvanced    Type = "turn_advanced"
	MovementDealt   Type = "movement_dealt"
	FiguresRefilled Type = "figures_refilled"
)

// GameEvent 对局状态变化通知
type GameEvent struct {
	Type      Type        `json:"type"`
	GameID    uint        `json:"game_id"`
	PlayerID  uint        `json:"player_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewGameEvent 创建事件并打上时间戳
func NewGameEvent(t Type, gameID, playerID uint, data interface{}) GameEvent {
	return GameEvent{
		Type:      t,
		GameID:    gameID,
		PlayerID:  playerID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, evt GameEvent) error
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, GameEvent) error { return nil }

// MultiPublisher 依次发布到多个发布者，单个失败不影响其他发布者
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, evt GameEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder 在内存中记录事件
type Recorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *Recorder) Publish(_ context.Context, evt GameEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameEvent(nil), r.events...)
}

// Types 按顺序返回已记录事件的类型
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
