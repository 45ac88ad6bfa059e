package game

import (
	apperrors "github.com/wfunc/switcher-game/internal/errors"
)

// Snapshot 对局的完整可序列化状态
type Snapshot struct {
	Name        string           `json:"name"`
	MinPlayers  int              `json:"min_players"`
	MaxPlayers  int              `json:"max_players"`
	Started     bool             `json:"started"`
	CurrentTurn int              `json:"current_turn"`
	HostID      uint             `json:"host_id"`
	Players     []PlayerSnapshot `json:"players"`
	Board       []Tile           `json:"board"`
	Pool        []MovementCard   `json:"pool"`
}

// PlayerSnapshot 玩家及其私有状态，按入座顺序保存
type PlayerSnapshot struct {
	Player
	PlayerSession
}

// Snapshot 导出当前状态，返回值与对局不共享切片
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Name:        g.Name,
		MinPlayers:  g.MinPlayers,
		MaxPlayers:  g.MaxPlayers,
		Started:     g.Started,
		CurrentTurn: g.CurrentTurn,
		HostID:      g.HostID,
		Players:     make([]PlayerSnapshot, 0, len(g.players)),
		Board:       g.Board(),
		Pool:        append([]MovementCard(nil), g.pool...),
	}
	for _, p := range g.players {
		snap.Players = append(snap.Players, PlayerSnapshot{Player: p, PlayerSession: g.sessions[p.ID].clone()})
	}
	return snap
}

// Restore 从快照重建对局，快照违反对局约束时返回 ErrInvalidSnapshot
func Restore(snap Snapshot, opts ...Option) (*Game, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}

	g := New(snap.Name, snap.MinPlayers, snap.MaxPlayers, opts...)
	g.Started = snap.Started
	g.CurrentTurn = snap.CurrentTurn
	g.HostID = snap.HostID
	g.board = append([]Tile(nil), snap.Board...)
	g.pool = append([]MovementCard(nil), snap.Pool...)
	for _, ps := range snap.Players {
		s := ps.PlayerSession.clone()
		g.players = append(g.players, ps.Player)
		g.sessions[ps.ID] = &s
	}
	return g, nil
}

func (s Snapshot) validate() error {
	n := len(s.Players)
	if n > s.MaxPlayers {
		return apperrors.Newf(apperrors.ErrInvalidSnapshot, "%d players exceed max %d", n, s.MaxPlayers)
	}
	if len(s.Board) != 0 && len(s.Board) != BoardTiles {
		return apperrors.Newf(apperrors.ErrInvalidSnapshot, "board has %d tiles", len(s.Board))
	}
	if n > 0 && (s.CurrentTurn < 0 || s.CurrentTurn >= n) {
		return apperrors.Newf(apperrors.ErrInvalidSnapshot, "current_turn %d out of range", s.CurrentTurn)
	}

	seenSlot := make(map[int]bool, n)
	seenID := make(map[uint]bool, n)
	for _, p := range s.Players {
		if p.TurnSlot < 0 || p.TurnSlot >= n || seenSlot[p.TurnSlot] {
			return apperrors.Newf(apperrors.ErrInvalidSnapshot, "turn_slot %d invalid", p.TurnSlot)
		}
		if seenID[p.ID] {
			return apperrors.Newf(apperrors.ErrInvalidSnapshot, "duplicate player %d", p.ID)
		}
		if len(p.FigureDeck)+len(p.FigureHand) > FigureDeckSize {
			return apperrors.Newf(apperrors.ErrInvalidSnapshot, "player %d holds too many figures", p.ID)
		}
		seenSlot[p.TurnSlot] = true
		seenID[p.ID] = true
	}
	return nil
}
