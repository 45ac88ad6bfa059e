package game

import (
	"math/rand"
	"sort"

	apperrors "github.com/wfunc/switcher-game/internal/errors"
)

// Game 一局对局的聚合根
//
// Game 本身不加锁，同一局的所有操作必须由调用方串行执行。
// 所有公开方法要么完整生效，要么返回错误且不修改任何状态。
type Game struct {
	ID          uint
	Name        string
	MinPlayers  int
	MaxPlayers  int
	Started     bool
	CurrentTurn int
	HostID      uint

	players  []Player
	sessions map[uint]*PlayerSession
	board    []Tile
	pool     []MovementCard
	rng      *rand.Rand
}

// Option 对局构造选项
type Option func(*Game)

// WithRand 注入随机源，测试中用固定种子获得可复现结果
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithID 设置持久化后的对局ID
func WithID(id uint) Option {
	return func(g *Game) { g.ID = id }
}

// New 创建一局空对局，人数范围由边界层校验
func New(name string, minPlayers, maxPlayers int, opts ...Option) *Game {
	g := &Game{
		Name:       name,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		sessions:   make(map[uint]*PlayerSession),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = NewRand(0)
	}
	return g
}

// ValidatePlayerRange 校验 2 <= min <= max <= 4
func ValidatePlayerRange(minPlayers, maxPlayers int) error {
	if minPlayers > maxPlayers {
		return apperrors.Newf(apperrors.ErrPreconditionsNotMet, "min_players %d > max_players %d", minPlayers, maxPlayers)
	}
	if minPlayers < 2 || maxPlayers > 4 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "players must be within 2..4, got %d..%d", minPlayers, maxPlayers)
	}
	return nil
}

// SetDefaults 生成棋盘与完整的移动卡牌堆
func (g *Game) SetDefaults() {
	g.board = GenerateBoard(g.rng)
	g.pool = NewMovementPool(g.rng)
}

// RedealFigures 为每名玩家重发一副完整的图形牌堆，并清空其图形手牌
func (g *Game) RedealFigures() {
	for _, s := range g.sessions {
		s.FigureDeck = NewFigureDeck(g.rng)
		s.FigureHand = nil
	}
}

// AddPlayer 玩家入座，分配下一个顺位并发放图形牌堆
func (g *Game) AddPlayer(p Player) error {
	if len(g.players) >= g.MaxPlayers {
		return apperrors.Newf(apperrors.ErrGameFull, "max_players=%d", g.MaxPlayers)
	}
	if _, ok := g.sessions[p.ID]; ok {
		return apperrors.Newf(apperrors.ErrPlayerAlreadyJoined, "player=%d", p.ID)
	}

	g.sessions[p.ID] = &PlayerSession{
		TurnSlot:   len(g.players),
		FigureDeck: NewFigureDeck(g.rng),
	}
	g.players = append(g.players, p)
	if g.HostID == 0 {
		g.HostID = p.ID
	}
	return nil
}

// DeletePlayer 玩家离座，剩余玩家的顺位按原相对顺序压缩为 0..n-1
func (g *Game) DeletePlayer(playerID uint) error {
	s, ok := g.sessions[playerID]
	if !ok {
		return playerNotFound(playerID)
	}
	removedSlot := s.TurnSlot

	// 离座玩家手里的移动卡放回牌堆
	g.pool = append(g.pool, s.MovementHand...)
	delete(g.sessions, playerID)
	for i, p := range g.players {
		if p.ID == playerID {
			g.players = append(g.players[:i:i], g.players[i+1:]...)
			break
		}
	}

	ordered := g.OrderedPlayers()
	for i, p := range ordered {
		g.sessions[p.ID].TurnSlot = i
	}

	n := len(ordered)
	switch {
	case n == 0:
		g.CurrentTurn = 0
	case removedSlot < g.CurrentTurn:
		g.CurrentTurn--
	case g.CurrentTurn >= n:
		g.CurrentTurn = 0
	}

	if g.HostID == playerID {
		g.HostID = 0
		if n > 0 {
			g.HostID = ordered[0].ID
		}
	}
	return nil
}

// CurrentPlayer 返回当前行动玩家，房间为空时 ok 为 false
func (g *Game) CurrentPlayer() (Player, bool) {
	for _, p := range g.OrderedPlayers() {
		if g.sessions[p.ID].TurnSlot == g.CurrentTurn {
			return p, true
		}
	}
	return Player{}, false
}

// AdvancePlayer 游标前进一位，不检查对局是否开始
func (g *Game) AdvancePlayer() {
	if n := len(g.players); n > 0 {
		g.CurrentTurn = (g.CurrentTurn + 1) % n
	}
}

// AdvanceTurn 对局开始后推进回合
func (g *Game) AdvanceTurn() error {
	if !g.Started {
		return apperrors.New(apperrors.ErrPreconditionsNotMet, "game not started")
	}
	g.AdvancePlayer()
	return nil
}

// Start 开始对局
func (g *Game) Start() error {
	if g.Started {
		return apperrors.New(apperrors.ErrGameAlreadyStarted)
	}
	if len(g.players) < g.MinPlayers {
		return apperrors.Newf(apperrors.ErrNotEnoughPlayers, "seated=%d min_players=%d", len(g.players), g.MinPlayers)
	}
	g.Started = true
	g.CurrentTurn = 0
	return nil
}

// Stop 结束进行中的对局，回到等待状态
func (g *Game) Stop() {
	g.Started = false
	g.CurrentTurn = 0
}

// ShufflePlayers 随机打乱行动顺序，只改变顺位
func (g *Game) ShufflePlayers() {
	ordered := g.OrderedPlayers()
	perm := g.rng.Perm(len(ordered))
	for i, p := range ordered {
		g.sessions[p.ID].TurnSlot = perm[i]
	}
}

// OrderedPlayers 按顺位升序返回玩家
func (g *Game) OrderedPlayers() []Player {
	ordered := append([]Player(nil), g.players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return g.sessions[ordered[i].ID].TurnSlot < g.sessions[ordered[j].ID].TurnSlot
	})
	return ordered
}

// AddHandMov 从公共牌堆为玩家发 3 张移动卡
//
// 玩家已有的移动卡先放回牌堆再抽取，保证卡牌总数不变。
func (g *Game) AddHandMov(playerID uint) ([]MovementCard, error) {
	s, ok := g.sessions[playerID]
	if !ok {
		return nil, playerNotFound(playerID)
	}

	available := append(append([]MovementCard(nil), g.pool...), s.MovementHand...)
	if len(available) < MovementHandSize {
		return nil, apperrors.Newf(apperrors.ErrInsufficientCards, "remaining=%d", len(available))
	}

	drawn, rest := drawMovement(g.rng, available, MovementHandSize)
	g.pool = rest
	s.MovementHand = drawn
	return append([]MovementCard(nil), drawn...), nil
}

// AddRandomCard 从玩家自己的图形牌堆补满手牌，牌堆耗尽时允许不足 3 张
func (g *Game) AddRandomCard(playerID uint) ([]FigureCard, error) {
	s, ok := g.sessions[playerID]
	if !ok {
		return nil, playerNotFound(playerID)
	}
	s.FigureDeck, s.FigureHand = refillFigures(g.rng, s.FigureDeck, s.FigureHand)
	return append([]FigureCard(nil), s.FigureHand...), nil
}

// GetPlayerFigures 返回玩家图形牌堆的副本
func (g *Game) GetPlayerFigures(playerID uint) ([]FigureCard, error) {
	s, ok := g.sessions[playerID]
	if !ok {
		return nil, playerNotFound(playerID)
	}
	return append([]FigureCard(nil), s.FigureDeck...), nil
}

// GetPlayerHandFigures 返回玩家图形手牌的副本
func (g *Game) GetPlayerHandFigures(playerID uint) ([]FigureCard, error) {
	s, ok := g.sessions[playerID]
	if !ok {
		return nil, playerNotFound(playerID)
	}
	return append([]FigureCard(nil), s.FigureHand...), nil
}

// PlayerSession 返回玩家私有状态的副本
func (g *Game) PlayerSession(playerID uint) (PlayerSession, error) {
	s, ok := g.sessions[playerID]
	if !ok {
		return PlayerSession{}, playerNotFound(playerID)
	}
	return s.clone(), nil
}

// Players 按入座顺序返回玩家
func (g *Game) Players() []Player {
	return append([]Player(nil), g.players...)
}

// PlayerCount 入座人数
func (g *Game) PlayerCount() int {
	return len(g.players)
}

// HasPlayer 玩家是否在本局
func (g *Game) HasPlayer(playerID uint) bool {
	_, ok := g.sessions[playerID]
	return ok
}

// Board 返回棋盘副本
func (g *Game) Board() []Tile {
	return append([]Tile(nil), g.board...)
}

// PoolSize 公共牌堆剩余张数
func (g *Game) PoolSize() int {
	return len(g.pool)
}

// MovementCardsInPlay 牌堆与所有手牌中的移动卡总数
func (g *Game) MovementCardsInPlay() int {
	total := len(g.pool)
	for _, s := range g.sessions {
		total += len(s.MovementHand)
	}
	return total
}

func playerNotFound(playerID uint) error {
	return apperrors.Newf(apperrors.ErrPlayerNotFound, "player=%d", playerID)
}
