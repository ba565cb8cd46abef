package service

import (
	"context"
	"fmt"
	"testing"

	"elaina/events"
	"elaina/game/baucua"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBauCuaWalletForTest(mocks *TestMocks, ctx context.Context, commits bool) (baucua.Wallet, *MockUnitOfWork) {
	uow := mocks.UnitOfWork()
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback").Return(nil)
	if commits {
		uow.On("Commit").Return(nil)
	}
	factory := new(MockUnitOfWorkFactory)
	factory.On("CreateForGuild", int64(TestGuildID)).Return(uow)
	return NewBauCuaWallet(factory), uow
}

func TestBauCuaWallet_DebitRecordsAnimal(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, uow := newBauCuaWalletForTest(mocks, ctx, true)

	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(500)).Return(int64(4500), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeBauCuaBet &&
			h.ChangeAmount == -500 &&
			h.TransactionMetadata["animal"] == "cua"
	})).Return(nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Debit(ctx, TestGuildID, TestUser1ID, 500, baucua.Crab)

	require.NoError(t, err)
	assert.Equal(t, int64(4500), balance)
	uow.AssertCalled(t, "Commit")
}

func TestBauCuaWallet_DebitMapsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, uow := newBauCuaWalletForTest(mocks, ctx, false)

	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(500)).
		Return(int64(0), fmt.Errorf("%w: balance 10", ErrInsufficientBalance))

	_, err := wallet.Debit(ctx, TestGuildID, TestUser1ID, 500, baucua.Fish)

	assert.ErrorIs(t, err, baucua.ErrInsufficientFunds)
	uow.AssertNotCalled(t, "Commit")
}

func TestBauCuaWallet_SettleWin(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, uow := newBauCuaWalletForTest(mocks, ctx, true)

	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Game == models.GameTypeBauCua && r.Outcome == "win" && r.Details["round_id"] == "r-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.GameRound).ID = 11
	}).Return(nil)
	mocks.UserRepo.On("AddBalance", ctx, int64(TestUser1ID), int64(3000)).Return(int64(7000), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeBauCuaPayout && *h.RelatedID == 11
	})).Return(nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Settle(ctx, &baucua.Settlement{
		RoundID:   "r-1",
		GuildID:   TestGuildID,
		ChannelID: "789012",
		UserID:    TestUser1ID,
		Stakes:    map[baucua.Animal]int64{baucua.Crab: 1000, baucua.Deer: 500},
		Dice:      baucua.Dice{baucua.Crab, baucua.Crab, baucua.Fish},
		Wager:     1500,
		Payout:    3000,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7000), balance)
	uow.AssertCalled(t, "Commit")

	settled := publishedOfType[events.GameSettledEvent](mocks.EventPublisher)
	require.Len(t, settled, 1)
	assert.Equal(t, models.GameTypeBauCua, settled[0].Game)
	assert.Equal(t, int64(11), settled[0].RoundID)
}

func TestBauCuaWallet_SettleLossReadsBalance(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, _ := newBauCuaWalletForTest(mocks, ctx, true)

	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Outcome == "loss"
	})).Return(nil)
	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{Balance: 4000}, nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Settle(ctx, &baucua.Settlement{
		GuildID: TestGuildID,
		UserID:  TestUser1ID,
		Stakes:  map[baucua.Animal]int64{baucua.Shrimp: 1000},
		Dice:    baucua.Dice{baucua.Crab, baucua.Fish, baucua.Deer},
		Wager:   1000,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)
	mocks.UserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestBauCuaWallet_Refund(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, _ := newBauCuaWalletForTest(mocks, ctx, true)

	mocks.UserRepo.On("AddBalance", ctx, int64(TestUser1ID), int64(800)).Return(int64(5000), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeBauCuaRefund && h.ChangeAmount == 800
	})).Return(nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Refund(ctx, TestGuildID, TestUser1ID, 800)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestBauCuaOutcome(t *testing.T) {
	assert.Equal(t, "win", BauCuaOutcome(1000, 2000))
	assert.Equal(t, "push", BauCuaOutcome(1000, 1000))
	assert.Equal(t, "loss", BauCuaOutcome(1000, 0))
}
