package service

import (
	"context"
	"testing"

	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsServiceForTest(mocks *TestMocks) (StatsService, *MockUnitOfWork) {
	uow := mocks.UnitOfWork()
	uow.On("Begin", context.Background()).Return(nil)
	uow.On("Rollback").Return(nil)
	factory := new(MockUnitOfWorkFactory)
	factory.On("CreateForGuild", int64(TestGuildID)).Return(uow)
	return NewStatsService(factory), uow
}

func TestStatsService_GetScoreboard(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service, _ := newStatsServiceForTest(mocks)

	mocks.UserRepo.On("GetTopByBalance", ctx, 10).Return([]*models.User{
		{DiscordID: TestUser1ID, Username: "alice", Balance: 9000},
		{DiscordID: TestUser2ID, Username: "bob", Balance: 100},
	}, nil)

	entries, err := service.GetScoreboard(ctx, TestGuildID, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestStatsService_GetUserStats(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service, _ := newStatsServiceForTest(mocks)

	user := &models.User{DiscordID: TestUser1ID, Balance: 5000}
	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(user, nil)
	mocks.GameRoundRepo.On("GetStats", ctx, int64(TestUser1ID)).Return([]*models.GameStats{
		{Game: models.GameTypeBlackjack, RoundsTotal: 3, RoundsWon: 1, TotalWager: 3000, TotalPayout: 2000},
		{Game: models.GameTypeCoinflip, RoundsTotal: 1, RoundsWon: 1, TotalWager: 500, TotalPayout: 1000},
	}, nil)
	mocks.BalanceHistoryRepo.On("GetByUser", ctx, int64(TestUser1ID), recentHistoryLimit).Return([]*models.BalanceHistory{}, nil)

	stats, err := service.GetUserStats(ctx, TestGuildID, TestUser1ID)

	require.NoError(t, err)
	assert.Equal(t, int64(-500), stats.NetProfit)
	assert.InDelta(t, 50.0, stats.WinPercentage, 0.001)
	assert.InDelta(t, 33.33, stats.Games[0].WinPercentage(), 0.01)
}

func TestStatsService_GetUserStats_UnknownUser(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service, _ := newStatsServiceForTest(mocks)

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(nil, nil)

	_, err := service.GetUserStats(ctx, TestGuildID, TestUser1ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
