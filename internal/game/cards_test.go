package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
)

func TestGenerateBoard(t *testing.T) {
	board := GenerateBoard(rand.New(rand.NewSource(1)))
	require.Len(t, board, BoardTiles)

	counts := make(map[Color]int)
	seen := make(map[[2]int]bool)
	for _, tile := range board {
		counts[tile.Color]++
		seen[[2]int{tile.X, tile.Y}] = true
	}
	assert.Len(t, seen, BoardTiles)
	for _, c := range Colors {
		assert.Equal(t, BoardTiles/len(Colors), counts[c], string(c))
	}
}

func TestNewMovementPool(t *testing.T) {
	pool := NewMovementPool(rand.New(rand.NewSource(1)))
	require.Len(t, pool, TotalMovementCards)

	counts := make(map[MovementCard]int)
	for _, c := range pool {
		counts[c]++
	}
	assert.Len(t, counts, len(MovementKinds))
	for _, kind := range MovementKinds {
		assert.Equal(t, MovementCopies, counts[kind], kind.String())
	}
	assert.Equal(t, "unknown", MovementCard(99).String())
}

func TestNewFigureDeck(t *testing.T) {
	deck := NewFigureDeck(rand.New(rand.NewSource(3)))
	require.Len(t, deck, FigureDeckSize)

	seen := make(map[FigureCard]bool)
	for _, f := range deck {
		assert.True(t, f.Valid())
		assert.False(t, seen[f])
		seen[f] = true
	}
	assert.Equal(t, "fig01", FigureCard(1).String())
	assert.Equal(t, "fige01", FigureCard(HardFigures+1).String())
	assert.False(t, FigureCard(HardFigures+1).Hard())
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := newTestGame(t, 4, 3)
	g.ShufflePlayers()
	require.NoError(t, g.Start())
	for _, p := range g.Players() {
		_, err := g.AddHandMov(p.ID)
		require.NoError(t, err)
		_, err = g.AddRandomCard(p.ID)
		require.NoError(t, err)
	}
	require.NoError(t, g.AdvanceTurn())

	data, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	restored, err := Restore(snap, WithID(7))
	require.NoError(t, err)
	assert.Equal(t, uint(7), restored.ID)
	assert.Equal(t, g.Snapshot(), restored.Snapshot())
	assert.Equal(t, g.OrderedPlayers(), restored.OrderedPlayers())
	assert.Equal(t, TotalMovementCards, restored.MovementCardsInPlay())

	before, _ := g.CurrentPlayer()
	after, _ := restored.CurrentPlayer()
	assert.Equal(t, before, after)
}

func TestRestoreRejectsBrokenSnapshot(t *testing.T) {
	snap := newTestGame(t, 4, 3).Snapshot()
	snap.Players[2].TurnSlot = 0

	_, err := Restore(snap)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSnapshot))

	snap = newTestGame(t, 4, 2).Snapshot()
	snap.Board = snap.Board[:10]
	_, err = Restore(snap)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSnapshot))
}
