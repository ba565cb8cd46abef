package service

import (
	"context"
	"testing"

	"elaina/events"
	"elaina/game"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGameServiceForTest(mocks *TestMocks, values ...int) GameService {
	return NewGameService(mocks.UserRepo, mocks.BalanceHistoryRepo, mocks.GameRoundRepo, mocks.EventPublisher, &game.SequenceRand{Values: values})
}

func TestGameService_Coinflip_Win(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newGameServiceForTest(mocks, 0) // heads

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{DiscordID: TestUser1ID, Balance: 1000}, nil)
	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Game == models.GameTypeCoinflip && r.Wager == 500 && r.Payout == 1000 && r.Outcome == "win"
	})).Return(nil)
	mocks.UserRepo.On("AddBalance", ctx, int64(TestUser1ID), int64(500)).Return(int64(1500), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeCoinflipWin && h.GuildID == TestGuildID
	})).Return(nil)
	mocks.ExpectAnyPublish()

	result, err := service.Coinflip(ctx, &CoinflipRequest{
		DiscordID: TestUser1ID,
		GuildID:   TestGuildID,
		ChannelID: TestChannelID,
		Pick:      "Heads",
		WagerSpec: "500",
	})

	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, int64(1500), result.NewBalance)
	mocks.AssertAllExpectations(t)

	settled := publishedOfType[events.GameSettledEvent](mocks.EventPublisher)
	require.Len(t, settled, 1)
	assert.Equal(t, int64(TestChannelID), settled[0].ChannelID)
	assert.Equal(t, int64(1000), settled[0].Payout)
}

func TestGameService_Coinflip_Loss(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newGameServiceForTest(mocks, 1) // tails

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{DiscordID: TestUser1ID, Balance: 1000}, nil)
	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Payout == 0 && r.Outcome == "loss"
	})).Return(nil)
	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(1000)).Return(int64(0), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeCoinflipLoss && h.ChangeAmount == -1000
	})).Return(nil)
	mocks.ExpectAnyPublish()

	result, err := service.Coinflip(ctx, &CoinflipRequest{DiscordID: TestUser1ID, Pick: "heads", WagerSpec: "all"})

	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, int64(0), result.NewBalance)
	mocks.AssertAllExpectations(t)
}

func TestGameService_Coinflip_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *models.User
		pick    string
		wager   string
		wantErr error
	}{
		{"bad pick", &models.User{Balance: 1000}, "edge", "10", ErrInvalidPick},
		{"unknown user", nil, "heads", "10", ErrUserNotFound},
		{"banned user", &models.User{Balance: 1000, Banned: true}, "heads", "10", ErrUserBanned},
		{"broke user", &models.User{Balance: 0}, "heads", "10", game.ErrInsufficientFunds},
		{"garbage wager", &models.User{Balance: 1000}, "tails", "lots", game.ErrInvalidWager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			service := newGameServiceForTest(mocks, 0)
			mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(tt.user, nil).Maybe()

			result, err := service.Coinflip(ctx, &CoinflipRequest{DiscordID: TestUser1ID, Pick: tt.pick, WagerSpec: tt.wager})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			mocks.GameRoundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestGameService_TaiXiu_Win(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	// tai class, target 11, dice 5+4+2
	service := newGameServiceForTest(mocks, 0, 0, 4, 3, 1)

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{DiscordID: TestUser1ID, Balance: 5000}, nil)
	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(1000)).Return(int64(4000), nil)
	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Game == models.GameTypeTaiXiu && r.Details["total"] == 11 && r.Details["result"] == TaiXiuTai
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.GameRound).ID = 42
	}).Return(nil)
	mocks.UserRepo.On("AddBalance", ctx, int64(TestUser1ID), int64(2000)).Return(int64(6000), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeTaiXiuBet
	})).Return(nil).Once()
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeTaiXiuPayout && h.RelatedID != nil && *h.RelatedID == 42
	})).Return(nil).Once()
	mocks.ExpectAnyPublish()

	result, err := service.TaiXiu(ctx, &TaiXiuRequest{DiscordID: TestUser1ID, Pick: "tai", WagerSpec: "1,000"})

	require.NoError(t, err)
	assert.True(t, result.Won)
	assert.Equal(t, int64(6000), result.NewBalance)
	assert.Equal(t, int64(2000), result.Round.Payout)
	mocks.AssertAllExpectations(t)
}

func TestGameService_TaiXiu_Loss(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	// xiu class, target 3, dice 1+1+1
	service := newGameServiceForTest(mocks, 1, 0, 0, 0, 0)

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{DiscordID: TestUser1ID, Balance: 5000}, nil)
	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(5000)).Return(int64(0), nil)
	mocks.GameRoundRepo.On("Create", ctx, mock.Anything).Return(nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.Anything).Return(nil).Once()
	mocks.ExpectAnyPublish()

	result, err := service.TaiXiu(ctx, &TaiXiuRequest{DiscordID: TestUser1ID, Pick: "tai", WagerSpec: "all"})

	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Equal(t, int64(0), result.NewBalance)
	mocks.UserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameService_TaiXiu_BetAboveBalanceRejectedBeforeCap(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newGameServiceForTest(mocks, 0)

	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{DiscordID: TestUser1ID, Balance: 300000}, nil)

	result, err := service.TaiXiu(ctx, &TaiXiuRequest{DiscordID: TestUser1ID, Pick: "xiu", WagerSpec: "400000"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, game.ErrInsufficientFunds)
	mocks.UserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	mocks.GameRoundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaiXiuClass(t *testing.T) {
	for total := 3; total <= 10; total++ {
		assert.Equal(t, TaiXiuXiu, TaiXiuClass(total), "total %d", total)
	}
	for total := 11; total <= 18; total++ {
		assert.Equal(t, TaiXiuTai, TaiXiuClass(total), "total %d", total)
	}
}

func TestRollTaiXiu_DiceAlwaysValid(t *testing.T) {
	for i := 0; i < 2000; i++ {
		dice := RollTaiXiu(game.DefaultRand)
		total := 0
		for _, d := range dice {
			assert.GreaterOrEqual(t, d, 1)
			assert.LessOrEqual(t, d, 6)
			total += d
		}
		assert.GreaterOrEqual(t, total, 3)
		assert.LessOrEqual(t, total, 18)
	}
}

func TestSpreadDice(t *testing.T) {
	for target := 3; target <= 18; target++ {
		dice := spreadDice(target)
		assert.Equal(t, target, dice[0]+dice[1]+dice[2])
		for _, d := range dice {
			assert.True(t, d >= 1 && d <= 6, "target %d gave %v", target, dice)
		}
	}
}
