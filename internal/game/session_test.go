package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
)

func newTestGame(t *testing.T, maxPlayers, seated int) *Game {
	t.Helper()
	g := New("test", 2, maxPlayers, WithRand(rand.New(rand.NewSource(42))))
	g.SetDefaults()
	for i := 1; i <= seated; i++ {
		require.NoError(t, g.AddPlayer(Player{ID: uint(i), Name: "p"}))
	}
	return g
}

func turnSlots(g *Game) []int {
	slots := make([]int, 0, len(g.players))
	for _, p := range g.players {
		slots = append(slots, g.sessions[p.ID].TurnSlot)
	}
	sort.Ints(slots)
	return slots
}

func playerIDs(players []Player) []uint {
	ids := make([]uint, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func TestGame_AddPlayer(t *testing.T) {
	t.Run("按入座顺序分配顺位", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		for i, p := range g.Players() {
			s, err := g.PlayerSession(p.ID)
			require.NoError(t, err)
			assert.Equal(t, i, s.TurnSlot)
			assert.Len(t, s.FigureDeck, FigureDeckSize)
			assert.Empty(t, s.FigureHand)
		}
		assert.Equal(t, uint(1), g.HostID)
	})

	t.Run("满员返回GameFull且不修改名单", func(t *testing.T) {
		g := newTestGame(t, 2, 2)
		err := g.AddPlayer(Player{ID: 9})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrGameFull))
		assert.Equal(t, 2, g.PlayerCount())
		assert.False(t, g.HasPlayer(9))
	})

	t.Run("重复入座被拒绝", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		err := g.AddPlayer(Player{ID: 1})
		assert.True(t, apperrors.Is(err, apperrors.ErrPlayerAlreadyJoined))
		assert.Equal(t, 2, g.PlayerCount())
	})
}

func TestGame_DeletePlayer(t *testing.T) {
	t.Run("删除顺位0后剩余顺位为0..2", func(t *testing.T) {
		g := newTestGame(t, 4, 4)
		first := g.OrderedPlayers()[0]
		require.NoError(t, g.DeletePlayer(first.ID))

		assert.Equal(t, []int{0, 1, 2}, turnSlots(g))
		assert.Equal(t, []uint{2, 3, 4}, playerIDs(g.OrderedPlayers()))
	})

	t.Run("打乱后删除保持相对顺序", func(t *testing.T) {
		g := newTestGame(t, 4, 4)
		g.ShufflePlayers()
		before := g.OrderedPlayers()
		require.NoError(t, g.DeletePlayer(before[1].ID))

		expected := []uint{before[0].ID, before[2].ID, before[3].ID}
		assert.Equal(t, expected, playerIDs(g.OrderedPlayers()))
		assert.Equal(t, []int{0, 1, 2}, turnSlots(g))
	})

	t.Run("任意增删序列顺位保持连续", func(t *testing.T) {
		g := newTestGame(t, 4, 0)
		r := rand.New(rand.NewSource(7))
		next := uint(1)
		for i := 0; i < 200; i++ {
			if g.PlayerCount() < g.MaxPlayers && (g.PlayerCount() == 0 || r.Intn(2) == 0) {
				require.NoError(t, g.AddPlayer(Player{ID: next}))
				next++
			} else {
				victim := g.Players()[r.Intn(g.PlayerCount())]
				require.NoError(t, g.DeletePlayer(victim.ID))
			}
			expected := make([]int, g.PlayerCount())
			for j := range expected {
				expected[j] = j
			}
			require.Equal(t, expected, turnSlots(g))
		}
	})

	t.Run("未知玩家返回PlayerNotFound", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		err := g.DeletePlayer(99)
		assert.True(t, apperrors.Is(err, apperrors.ErrPlayerNotFound))
		assert.Equal(t, 2, g.PlayerCount())
	})

	t.Run("房主离开后转交给顺位0", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		require.NoError(t, g.DeletePlayer(1))
		assert.Equal(t, g.OrderedPlayers()[0].ID, g.HostID)

		require.NoError(t, g.DeletePlayer(2))
		require.NoError(t, g.DeletePlayer(3))
		assert.Zero(t, g.HostID)
	})

	t.Run("离座玩家的移动卡回到牌堆", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		_, err := g.AddHandMov(1)
		require.NoError(t, err)
		require.NoError(t, g.DeletePlayer(1))
		assert.Equal(t, TotalMovementCards, g.PoolSize())
	})

	t.Run("当前玩家在删除前面的玩家后不变", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		g.AdvancePlayer()
		g.AdvancePlayer()
		current, _ := g.CurrentPlayer()
		require.NoError(t, g.DeletePlayer(g.OrderedPlayers()[0].ID))

		after, ok := g.CurrentPlayer()
		require.True(t, ok)
		assert.Equal(t, current, after)
	})

	t.Run("删除末位的当前玩家后游标回到0", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		g.AdvancePlayer()
		g.AdvancePlayer()
		current, _ := g.CurrentPlayer()
		require.NoError(t, g.DeletePlayer(current.ID))
		assert.Equal(t, 0, g.CurrentTurn)
	})
}

func TestGame_CurrentPlayer(t *testing.T) {
	g := New("empty", 2, 4)
	_, ok := g.CurrentPlayer()
	assert.False(t, ok)

	g = newTestGame(t, 4, 2)
	p, ok := g.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, uint(1), p.ID)
}

func TestGame_TurnAdvance(t *testing.T) {
	t.Run("AdvancePlayer不要求开始", func(t *testing.T) {
		g := newTestGame(t, 4, 3)
		g.AdvancePlayer()
		assert.Equal(t, 1, g.CurrentTurn)
		g.AdvancePlayer()
		g.AdvancePlayer()
		assert.Equal(t, 0, g.CurrentTurn)
	})

	t.Run("空房间AdvancePlayer无操作", func(t *testing.T) {
		g := New("empty", 2, 4)
		g.AdvancePlayer()
		assert.Equal(t, 0, g.CurrentTurn)
	})

	t.Run("未开始时AdvanceTurn返回PreconditionsNotMet", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		err := g.AdvanceTurn()
		assert.True(t, apperrors.Is(err, apperrors.ErrPreconditionsNotMet))
		assert.Equal(t, 0, g.CurrentTurn)
	})

	t.Run("两名玩家推进两次回到原玩家", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		g.Started = true
		original, _ := g.CurrentPlayer()

		require.NoError(t, g.AdvanceTurn())
		second, _ := g.CurrentPlayer()
		assert.NotEqual(t, original, second)

		require.NoError(t, g.AdvanceTurn())
		back, _ := g.CurrentPlayer()
		assert.Equal(t, original, back)
	})
}

func TestGame_Start(t *testing.T) {
	g := New("start", 3, 4)
	require.NoError(t, g.AddPlayer(Player{ID: 1}))
	require.NoError(t, g.AddPlayer(Player{ID: 2}))

	err := g.Start()
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEnoughPlayers))
	assert.False(t, g.Started)

	require.NoError(t, g.AddPlayer(Player{ID: 3}))
	require.NoError(t, g.Start())
	assert.True(t, g.Started)
	assert.True(t, apperrors.Is(g.Start(), apperrors.ErrGameAlreadyStarted))

	g.AdvancePlayer()
	g.Stop()
	assert.False(t, g.Started)
	assert.Equal(t, 0, g.CurrentTurn)
	assert.True(t, apperrors.Is(g.AdvanceTurn(), apperrors.ErrPreconditionsNotMet))
}

func TestGame_ShufflePlayers(t *testing.T) {
	t.Run("打乱后成员不变", func(t *testing.T) {
		g := newTestGame(t, 4, 4)
		before := g.OrderedPlayers()
		g.ShufflePlayers()
		after := g.OrderedPlayers()

		assert.ElementsMatch(t, before, after)
		assert.Equal(t, []int{0, 1, 2, 3}, turnSlots(g))
		// 入座顺序与会话映射不受影响
		assert.Equal(t, before, g.Players())
	})

	t.Run("固定种子结果可复现", func(t *testing.T) {
		a := newTestGame(t, 4, 4)
		b := newTestGame(t, 4, 4)
		a.ShufflePlayers()
		b.ShufflePlayers()
		assert.Equal(t, a.OrderedPlayers(), b.OrderedPlayers())
	})

	t.Run("多个种子中至少一次改变顺序", func(t *testing.T) {
		changed := false
		for seed := int64(1); seed <= 10 && !changed; seed++ {
			g := New("shuffle", 2, 4, WithRand(rand.New(rand.NewSource(seed))))
			for i := 1; i <= 4; i++ {
				require.NoError(t, g.AddPlayer(Player{ID: uint(i)}))
			}
			before := playerIDs(g.OrderedPlayers())
			g.ShufflePlayers()
			changed = !assert.ObjectsAreEqual(before, playerIDs(g.OrderedPlayers()))
		}
		assert.True(t, changed)
	})
}

func TestGame_AddHandMov(t *testing.T) {
	t.Run("发牌后卡牌守恒", func(t *testing.T) {
		g := newTestGame(t, 4, 4)
		assert.Equal(t, TotalMovementCards, g.PoolSize())

		for k, p := range g.Players() {
			hand, err := g.AddHandMov(p.ID)
			require.NoError(t, err)
			assert.Len(t, hand, MovementHandSize)
			assert.Equal(t, TotalMovementCards-MovementHandSize*(k+1), g.PoolSize())
			assert.Equal(t, TotalMovementCards, g.MovementCardsInPlay())
		}
	})

	t.Run("重复发牌先回收旧手牌", func(t *testing.T) {
		g := newTestGame(t, 4, 1)
		_, err := g.AddHandMov(1)
		require.NoError(t, err)
		_, err = g.AddHandMov(1)
		require.NoError(t, err)
		assert.Equal(t, TotalMovementCards-MovementHandSize, g.PoolSize())
		assert.Equal(t, TotalMovementCards, g.MovementCardsInPlay())
	})

	t.Run("牌堆不足返回InsufficientCards", func(t *testing.T) {
		g := New("empty pool", 2, 4)
		require.NoError(t, g.AddPlayer(Player{ID: 1}))
		g.pool = []MovementCard{MovLinearContiguous, MovLShapeLeft}

		_, err := g.AddHandMov(1)
		assert.True(t, apperrors.Is(err, apperrors.ErrInsufficientCards))
		assert.Equal(t, 2, g.PoolSize())
		s, _ := g.PlayerSession(1)
		assert.Empty(t, s.MovementHand)
	})

	t.Run("未知玩家", func(t *testing.T) {
		g := newTestGame(t, 4, 1)
		_, err := g.AddHandMov(42)
		assert.True(t, apperrors.Is(err, apperrors.ErrPlayerNotFound))
		assert.Equal(t, TotalMovementCards, g.PoolSize())
	})
}

func TestGame_AddRandomCard(t *testing.T) {
	t.Run("手牌已满不抽牌", func(t *testing.T) {
		g := newTestGame(t, 4, 1)
		s := g.sessions[1]
		s.FigureDeck = []FigureCard{1, 2, 3, 4, 5, 6}
		s.FigureHand = []FigureCard{7, 8, 9}

		hand, err := g.AddRandomCard(1)
		require.NoError(t, err)
		assert.Equal(t, []FigureCard{7, 8, 9}, hand)
		deck, _ := g.GetPlayerFigures(1)
		assert.Len(t, deck, 6)
	})

	t.Run("牌堆为空时手牌保持不足", func(t *testing.T) {
		g := newTestGame(t, 4, 1)
		s := g.sessions[1]
		s.FigureDeck = nil
		s.FigureHand = []FigureCard{4}

		hand, err := g.AddRandomCard(1)
		require.NoError(t, err)
		assert.Equal(t, []FigureCard{4}, hand)
		deck, _ := g.GetPlayerFigures(1)
		assert.Empty(t, deck)
	})

	t.Run("结果手牌数为min(h+d,3)", func(t *testing.T) {
		cases := []struct{ h, d int }{{0, 25}, {0, 2}, {1, 1}, {2, 5}, {0, 0}, {1, 0}}
		for _, tc := range cases {
			g := newTestGame(t, 4, 1)
			s := g.sessions[1]
			s.FigureHand = append([]FigureCard(nil), s.FigureDeck[:tc.h]...)
			s.FigureDeck = append([]FigureCard(nil), s.FigureDeck[tc.h:tc.h+tc.d]...)

			hand, err := g.AddRandomCard(1)
			require.NoError(t, err)
			want := tc.h + tc.d
			if want > FigureHandSize {
				want = FigureHandSize
			}
			assert.Len(t, hand, want, "h=%d d=%d", tc.h, tc.d)
			deck, _ := g.GetPlayerFigures(1)
			assert.Len(t, deck, tc.d-(want-tc.h), "h=%d d=%d", tc.h, tc.d)
			assert.LessOrEqual(t, len(deck)+len(hand), FigureDeckSize)
		}
	})

	t.Run("不影响其他玩家与公共牌堆", func(t *testing.T) {
		g := newTestGame(t, 4, 2)
		other, _ := g.PlayerSession(2)
		_, err := g.AddRandomCard(1)
		require.NoError(t, err)

		after, _ := g.PlayerSession(2)
		assert.Equal(t, other, after)
		assert.Equal(t, TotalMovementCards, g.PoolSize())
	})

	t.Run("访问器返回副本", func(t *testing.T) {
		g := newTestGame(t, 4, 1)
		deck, err := g.GetPlayerFigures(1)
		require.NoError(t, err)
		deck[0] = 0
		again, _ := g.GetPlayerFigures(1)
		assert.NotEqual(t, FigureCard(0), again[0])

		_, err = g.GetPlayerHandFigures(5)
		assert.True(t, apperrors.Is(err, apperrors.ErrPlayerNotFound))
		_, err = g.AddRandomCard(5)
		assert.True(t, apperrors.Is(err, apperrors.ErrPlayerNotFound))
	})
}

func TestGame_RedealFigures(t *testing.T) {
	g := newTestGame(t, 4, 2)
	_, err := g.AddRandomCard(1)
	require.NoError(t, err)

	g.RedealFigures()
	for _, p := range g.Players() {
		s, _ := g.PlayerSession(p.ID)
		assert.Len(t, s.FigureDeck, FigureDeckSize)
		assert.Empty(t, s.FigureHand)
	}
}

func TestGame_SetDefaults(t *testing.T) {
	g := New("defaults", 2, 4)
	assert.Empty(t, g.Board())
	g.SetDefaults()
	assert.Len(t, g.Board(), BoardTiles)
	assert.Equal(t, TotalMovementCards, g.PoolSize())
}

func TestValidatePlayerRange(t *testing.T) {
	assert.NoError(t, ValidatePlayerRange(2, 4))
	assert.NoError(t, ValidatePlayerRange(3, 3))
	assert.True(t, apperrors.Is(ValidatePlayerRange(4, 2), apperrors.ErrPreconditionsNotMet))
	assert.True(t, apperrors.Is(ValidatePlayerRange(1, 4), apperrors.ErrInvalidParam))
	assert.True(t, apperrors.Is(ValidatePlayerRange(2, 5), apperrors.ErrInvalidParam))
}
