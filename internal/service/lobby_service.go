package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wfunc/switcher-game/internal/config"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/events"
	"github.com/wfunc/switcher-game/internal/game"
	"github.com/wfunc/switcher-game/internal/logger"
	"github.com/wfunc/switcher-game/internal/models"
	"github.com/wfunc/switcher-game/internal/repository"
	"github.com/wfunc/switcher-game/internal/utils"
	"go.uber.org/zap"
)

// lobbyService 大厅服务实现
//
// 每次操作都从仓储还原对局、在对局锁内修改并保存，
// 操作失败时内存中的修改直接丢弃，持久化状态保持不变。
type lobbyService struct {
	repos      *repository.Manager
	jwtManager *utils.JWTManager
	publisher  events.Publisher
	cfg        config.GameConfig
	log        *zap.Logger

	// 对局ID -> 对局锁
	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	// 派生每次还原对局所用的种子
	seedMu sync.Mutex
	seeds  *rand.Rand
}

// NewLobbyService 创建大厅服务
func NewLobbyService(
	repos *repository.Manager,
	jwtManager *utils.JWTManager,
	publisher events.Publisher,
	cfg config.GameConfig,
	log *zap.Logger,
) LobbyService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &lobbyService{
		repos:      repos,
		jwtManager: jwtManager,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
		locks:      make(map[uint]*sync.Mutex),
		seeds:      game.NewRand(cfg.RandomSeed),
	}
}

// RegisterPlayer 注册玩家并签发令牌
func (s *lobbyService) RegisterPlayer(ctx context.Context, name string) (*Registration, error) {
	name, err := s.validateName(name)
	if err != nil {
		return nil, err
	}

	player := &models.Player{Name: name}
	if err := s.repos.Players().Create(ctx, player); err != nil {
		s.log.Error("创建玩家失败", zap.Error(err))
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(player.ID, player.Name, player.Identifier)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "签发令牌失败")
	}

	s.log.Info("玩家已注册", zap.Uint("player_id", player.ID), zap.String("name", player.Name))
	return &Registration{
		PlayerID:   player.ID,
		Name:       player.Name,
		Identifier: player.Identifier,
		Token:      token,
	}, nil
}

// CreateGame 创建对局，创建者自动入座并成为房主
func (s *lobbyService) CreateGame(ctx context.Context, hostID uint, req *CreateGameRequest) (*GameView, error) {
	name, err := s.validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := game.ValidatePlayerRange(req.MinPlayers, req.MaxPlayers); err != nil {
		return nil, err
	}
	if req.MinPlayers < s.cfg.MinPlayers || req.MaxPlayers > s.cfg.MaxPlayers {
		return nil, apperrors.Newf(apperrors.ErrInvalidParam, "players must be within %d..%d", s.cfg.MinPlayers, s.cfg.MaxPlayers)
	}

	host, err := s.findPlayer(ctx, hostID)
	if err != nil {
		return nil, err
	}

	g := game.New(name, req.MinPlayers, req.MaxPlayers, game.WithRand(s.newRand()))
	g.SetDefaults()
	if err := g.AddPlayer(host); err != nil {
		return nil, err
	}

	// 对局数上限的检查与创建在同一事务内完成
	err = s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		if s.cfg.MaxSessions > 0 {
			count, err := tx.Games().Count(ctx)
			if err != nil {
				return err
			}
			if count >= int64(s.cfg.MaxSessions) {
				return apperrors.Newf(apperrors.ErrPreconditionsNotMet, "too many games: %d", count)
			}
		}
		return tx.Games().Create(ctx, g)
	})
	if err != nil {
		s.log.Error("创建对局失败", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.NewGameEvent(events.GameCreated, g.ID, hostID, map[string]interface{}{
		"name":        g.Name,
		"min_players": g.MinPlayers,
		"max_players": g.MaxPlayers,
	}))
	return newGameView(g), nil
}

// JoinGame 加入尚未开始的对局
func (s *lobbyService) JoinGame(ctx context.Context, gameID, playerID uint) (*GameView, error) {
	player, err := s.findPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		if g.Started {
			return nil, apperrors.Newf(apperrors.ErrGameAlreadyStarted, "game=%d", gameID)
		}
		if err := g.AddPlayer(player); err != nil {
			return nil, err
		}
		return []events.GameEvent{
			events.NewGameEvent(events.PlayerJoined, gameID, playerID, map[string]interface{}{
				"name":    player.Name,
				"players": g.PlayerCount(),
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return newGameView(g), nil
}

// LeaveGame 离开对局
//
// 房主离开时由顺位 0 的玩家接任；进行中的对局不足最少人数时回到等待状态；
// 最后一名玩家离开后对局被删除。
func (s *lobbyService) LeaveGame(ctx context.Context, gameID, playerID uint) (*GameView, error) {
	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		previousHost := g.HostID
		if err := g.DeletePlayer(playerID); err != nil {
			return nil, err
		}

		evts := []events.GameEvent{
			events.NewGameEvent(events.PlayerLeft, gameID, playerID, map[string]interface{}{
				"players": g.PlayerCount(),
			}),
		}
		if g.HostID != previousHost && g.HostID != 0 {
			evts = append(evts, events.NewGameEvent(events.HostChanged, gameID, g.HostID, nil))
		}
		if g.Started && g.PlayerCount() < g.MinPlayers && g.PlayerCount() > 0 {
			g.Stop()
			evts = append(evts, events.NewGameEvent(events.GameStopped, gameID, 0, nil))
		}
		return evts, nil
	})
	if err != nil {
		return nil, err
	}

	view := newGameView(g)
	view.Deleted = g.PlayerCount() == 0
	return view, nil
}

// StartGame 房主开始对局：打乱顺序，每名玩家发 3 张移动卡并补满图形手牌
func (s *lobbyService) StartGame(ctx context.Context, gameID, playerID uint) (*GameView, error) {
	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		if !g.HasPlayer(playerID) {
			return nil, apperrors.Newf(apperrors.ErrPlayerNotFound, "player=%d", playerID)
		}
		if g.HostID != playerID {
			return nil, apperrors.Newf(apperrors.ErrNotHost, "host=%d", g.HostID)
		}
		if err := g.Start(); err != nil {
			return nil, err
		}

		g.ShufflePlayers()
		order := make([]uint, 0, g.PlayerCount())
		for _, p := range g.OrderedPlayers() {
			if _, err := g.AddHandMov(p.ID); err != nil {
				return nil, err
			}
			if _, err := g.AddRandomCard(p.ID); err != nil {
				return nil, err
			}
			order = append(order, p.ID)
		}

		return []events.GameEvent{
			events.NewGameEvent(events.GameStarted, gameID, playerID, map[string]interface{}{
				"turn_order": order,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return newGameView(g), nil
}

// EndTurn 当前玩家结束回合，补满其图形手牌后轮到下一位
func (s *lobbyService) EndTurn(ctx context.Context, gameID, playerID uint) (*GameView, error) {
	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		if !g.Started {
			return nil, apperrors.New(apperrors.ErrPreconditionsNotMet, "game not started")
		}
		if !g.HasPlayer(playerID) {
			return nil, apperrors.Newf(apperrors.ErrPlayerNotFound, "player=%d", playerID)
		}
		if current, _ := g.CurrentPlayer(); current.ID != playerID {
			return nil, apperrors.Newf(apperrors.ErrNotYourTurn, "current=%d", current.ID)
		}

		if _, err := g.AddRandomCard(playerID); err != nil {
			return nil, err
		}
		if err := g.AdvanceTurn(); err != nil {
			return nil, err
		}

		next, _ := g.CurrentPlayer()
		return []events.GameEvent{
			events.NewGameEvent(events.TurnAdvanced, gameID, playerID, map[string]interface{}{
				"current_turn":   g.CurrentTurn,
				"current_player": next.ID,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return newGameView(g), nil
}

// DealMovementCards 为玩家重新发 3 张移动卡
func (s *lobbyService) DealMovementCards(ctx context.Context, gameID, playerID uint) (*HandView, error) {
	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		if _, err := g.AddHandMov(playerID); err != nil {
			return nil, err
		}
		// 移动卡是私有信息，事件只带剩余张数
		return []events.GameEvent{
			events.NewGameEvent(events.MovementDealt, gameID, playerID, map[string]interface{}{
				"pool_size": g.PoolSize(),
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return newHandView(g, playerID)
}

// RefillFigures 从玩家的图形牌堆补满手牌
func (s *lobbyService) RefillFigures(ctx context.Context, gameID, playerID uint) (*HandView, error) {
	g, err := s.update(ctx, gameID, func(g *game.Game) ([]events.GameEvent, error) {
		hand, err := g.AddRandomCard(playerID)
		if err != nil {
			return nil, err
		}
		return []events.GameEvent{
			events.NewGameEvent(events.FiguresRefilled, gameID, playerID, map[string]interface{}{
				"figure_hand": hand,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return newHandView(g, playerID)
}

// GetGame 查询对局
func (s *lobbyService) GetGame(ctx context.Context, gameID uint) (*GameView, error) {
	g, err := s.repos.Games().FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return newGameView(g), nil
}

// PlayerHand 查询玩家手牌
func (s *lobbyService) PlayerHand(ctx context.Context, gameID, playerID uint) (*HandView, error) {
	g, err := s.repos.Games().FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return newHandView(g, playerID)
}

// ListGames 分页列出等待中的对局
func (s *lobbyService) ListGames(ctx context.Context, page, pageSize int) ([]*LobbySummary, int64, error) {
	if pageSize <= 0 {
		pageSize = s.cfg.LobbyPageSize
	}
	pagination := repository.NewPagination(page, pageSize)
	lobbies, err := s.repos.Games().ListOpen(ctx, pagination)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*LobbySummary, 0, len(lobbies))
	for _, l := range lobbies {
		items = append(items, &LobbySummary{
			ID:          l.ID,
			Name:        l.Name,
			MinPlayers:  l.MinPlayers,
			MaxPlayers:  l.MaxPlayers,
			PlayerCount: l.PlayerCount,
			Started:     l.Started,
			HostID:      l.HostID,
		})
	}
	return items, pagination.Total, nil
}

// update 在对局锁内还原、修改并保存对局，成功后按顺序发布事件
//
// 修改后没有玩家的对局会被删除。
func (s *lobbyService) update(ctx context.Context, gameID uint, fn func(g *game.Game) ([]events.GameEvent, error)) (*game.Game, error) {
	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := s.repos.Games().FindByID(ctx, gameID, game.WithRand(s.newRand()))
	if err != nil {
		return nil, err
	}

	evts, err := fn(g)
	if err != nil {
		return nil, err
	}

	if g.PlayerCount() == 0 {
		if err := s.repos.Games().Delete(ctx, gameID); err != nil {
			return nil, err
		}
		s.dropLock(gameID)
		evts = append(evts, events.NewGameEvent(events.GameDeleted, gameID, 0, nil))
	} else if err := s.repos.Games().Save(ctx, g); err != nil {
		s.log.Error("保存对局失败", zap.Uint("game_id", gameID), zap.Error(err))
		return nil, err
	}

	for _, evt := range evts {
		s.publish(ctx, evt)
	}
	return g, nil
}

func (s *lobbyService) lockFor(gameID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[gameID] = lock
	}
	return lock
}

// dropLock 只在持有该对局锁时调用
func (s *lobbyService) dropLock(gameID uint) {
	s.mu.Lock()
	delete(s.locks, gameID)
	s.mu.Unlock()
}

// publish 事件发布失败只记录日志，对局状态已经保存
func (s *lobbyService) publish(ctx context.Context, evt events.GameEvent) {
	logger.LogGameEvent(string(evt.Type), evt.GameID, map[string]interface{}{"player_id": evt.PlayerID})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("发布对局事件失败",
			zap.String("type", string(evt.Type)),
			zap.Uint("game_id", evt.GameID),
			zap.Error(err))
	}
}

func (s *lobbyService) newRand() *rand.Rand {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return rand.New(rand.NewSource(s.seeds.Int63()))
}

func (s *lobbyService) findPlayer(ctx context.Context, playerID uint) (game.Player, error) {
	p, err := s.repos.Players().FindByID(ctx, playerID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return game.Player{}, apperrors.Newf(apperrors.ErrPlayerNotFound, "player=%d", playerID)
		}
		return game.Player{}, err
	}
	return game.Player{ID: p.ID, Name: p.Name}, nil
}

func (s *lobbyService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.New(apperrors.ErrInvalidParam, "name is required")
	}
	if utf8.RuneCountInString(name) > s.cfg.NameMaxLength {
		return "", apperrors.Newf(apperrors.ErrInvalidParam, "name longer than %d", s.cfg.NameMaxLength)
	}
	return name, nil
}

func newPlayerView(g *game.Game, p game.Player) PlayerView {
	session, _ := g.PlayerSession(p.ID)
	return PlayerView{
		ID:            p.ID,
		Name:          p.Name,
		TurnSlot:      session.TurnSlot,
		MovementCards: len(session.MovementHand),
		FigureHand:    session.FigureHand,
		FigureDeck:    len(session.FigureDeck),
	}
}

func newGameView(g *game.Game) *GameView {
	view := &GameView{
		ID:          g.ID,
		Name:        g.Name,
		MaxPlayers:  g.MaxPlayers,
		MinPlayers:  g.MinPlayers,
		Started:     g.Started,
		HostID:      g.HostID,
		CurrentTurn: g.CurrentTurn,
		Players:     make([]PlayerView, 0, g.PlayerCount()),
		Board:       g.Board(),
		PoolSize:    g.PoolSize(),
	}
	for _, p := range g.OrderedPlayers() {
		view.Players = append(view.Players, newPlayerView(g, p))
	}
	if g.Started {
		if current, ok := g.CurrentPlayer(); ok {
			cv := newPlayerView(g, current)
			view.CurrentPlayer = &cv
		}
	}
	return view
}

func newHandView(g *game.Game, playerID uint) (*HandView, error) {
	session, err := g.PlayerSession(playerID)
	if err != nil {
		return nil, err
	}
	return &HandView{
		GameID:     g.ID,
		PlayerID:   playerID,
		Movement:   session.MovementHand,
		FigureHand: session.FigureHand,
		FigureDeck: len(session.FigureDeck),
	}, nil
}
