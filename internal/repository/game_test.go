package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"github.com/wfunc/switcher-game/internal/game"
	"gorm.io/gorm"
)

// GameRepositoryTestSuite 对局仓储测试套件
type GameRepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	gameRepo GameRepository
	ctx      context.Context
}

func (suite *GameRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.gameRepo = NewGameRepository(suite.db)
	suite.ctx = context.Background()
}

func (suite *GameRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

func (suite *GameRepositoryTestSuite) newGame(name string, seated int) *game.Game {
	g := game.New(name, 2, 4, game.WithRand(rand.New(rand.NewSource(1))))
	g.SetDefaults()
	for i := 1; i <= seated; i++ {
		suite.Require().NoError(g.AddPlayer(game.Player{ID: uint(i), Name: fmt.Sprintf("p%d", i)}))
	}
	return g
}

func (suite *GameRepositoryTestSuite) TestCreateAndFind() {
	g := suite.newGame("lobby", 3)
	suite.Require().NoError(suite.gameRepo.Create(suite.ctx, g))
	suite.NotZero(g.ID)

	loaded, err := suite.gameRepo.FindByID(suite.ctx, g.ID)
	suite.Require().NoError(err)
	suite.Equal(g.ID, loaded.ID)
	suite.Equal(g.Snapshot(), loaded.Snapshot())
}

// 保存后完整还原名单、顺位、手牌、牌堆与棋盘
func (suite *GameRepositoryTestSuite) TestSaveRoundTrip() {
	g := suite.newGame("round trip", 4)
	suite.Require().NoError(suite.gameRepo.Create(suite.ctx, g))

	g.ShufflePlayers()
	suite.Require().NoError(g.Start())
	for _, p := range g.Players() {
		_, err := g.AddHandMov(p.ID)
		suite.Require().NoError(err)
		_, err = g.AddRandomCard(p.ID)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(g.AdvanceTurn())
	suite.Require().NoError(g.DeletePlayer(g.OrderedPlayers()[2].ID))
	suite.Require().NoError(suite.gameRepo.Save(suite.ctx, g))

	loaded, err := suite.gameRepo.FindByID(suite.ctx, g.ID)
	suite.Require().NoError(err)
	suite.Equal(g.Snapshot(), loaded.Snapshot())
	suite.Equal(g.OrderedPlayers(), loaded.OrderedPlayers())
	suite.Equal(game.TotalMovementCards, loaded.MovementCardsInPlay())
	suite.True(loaded.Started)
}

func (suite *GameRepositoryTestSuite) TestFindMissing() {
	_, err := suite.gameRepo.FindByID(suite.ctx, 404)
	suite.True(apperrors.Is(err, apperrors.ErrGameNotFound))
}

func (suite *GameRepositoryTestSuite) TestSaveMissing() {
	g := suite.newGame("ghost", 0)
	g.ID = 77
	err := suite.gameRepo.Save(suite.ctx, g)
	suite.True(apperrors.Is(err, apperrors.ErrGameNotFound))
}

func (suite *GameRepositoryTestSuite) TestListOpen() {
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.gameRepo.Create(suite.ctx, suite.newGame(fmt.Sprintf("open-%d", i), 2)))
	}
	started := suite.newGame("started", 2)
	suite.Require().NoError(started.Start())
	suite.Require().NoError(suite.gameRepo.Create(suite.ctx, started))

	page := NewPagination(1, 2)
	lobbies, err := suite.gameRepo.ListOpen(suite.ctx, page)
	suite.Require().NoError(err)
	suite.Len(lobbies, 2)
	suite.Equal(int64(3), page.Total)
	suite.Equal("open-0", lobbies[0].Name)
	suite.Equal(2, lobbies[0].PlayerCount)

	count, err := suite.gameRepo.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(4), count)
}

func (suite *GameRepositoryTestSuite) TestDelete() {
	g := suite.newGame("bye", 1)
	suite.Require().NoError(suite.gameRepo.Create(suite.ctx, g))
	suite.Require().NoError(suite.gameRepo.Delete(suite.ctx, g.ID))

	_, err := suite.gameRepo.FindByID(suite.ctx, g.ID)
	suite.True(apperrors.Is(err, apperrors.ErrGameNotFound))
	suite.True(apperrors.Is(suite.gameRepo.Delete(suite.ctx, g.ID), apperrors.ErrGameNotFound))
}

func (suite *GameRepositoryTestSuite) TestWithTxRollback() {
	g := suite.newGame("tx", 1)
	err := suite.db.Transaction(func(tx *gorm.DB) error {
		if err := suite.gameRepo.WithTx(tx).Create(suite.ctx, g); err != nil {
			return err
		}
		return fmt.Errorf("rollback")
	})
	suite.Error(err)

	count, err := suite.gameRepo.Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Zero(count)
}

func TestGameRepositorySuite(t *testing.T) {
	suite.Run(t, new(GameRepositoryTestSuite))
}
