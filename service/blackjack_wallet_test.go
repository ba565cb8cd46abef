package service

import (
	"context"
	"fmt"
	"testing"

	"elaina/events"
	"elaina/game/blackjack"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWalletForTest(mocks *TestMocks, ctx context.Context, commits bool) (blackjack.Wallet, *MockUnitOfWork) {
	uow := mocks.UnitOfWork()
	uow.On("Begin", ctx).Return(nil)
	uow.On("Rollback").Return(nil)
	if commits {
		uow.On("Commit").Return(nil)
	}
	factory := new(MockUnitOfWorkFactory)
	factory.On("CreateForGuild", int64(TestGuildID)).Return(uow)
	return NewBlackjackWallet(factory), uow
}

func TestBlackjackWallet_DebitMapsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, uow := newWalletForTest(mocks, ctx, false)

	mocks.UserRepo.On("DeductBalance", ctx, int64(TestUser1ID), int64(1000)).
		Return(int64(0), fmt.Errorf("%w: balance 10", ErrInsufficientBalance))

	_, err := wallet.Debit(ctx, TestGuildID, TestUser1ID, 1000)

	assert.ErrorIs(t, err, blackjack.ErrInsufficientFunds)
	uow.AssertNotCalled(t, "Commit")
}

func TestBlackjackWallet_SettleWin(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, uow := newWalletForTest(mocks, ctx, true)

	mocks.GameRoundRepo.On("Create", ctx, mock.MatchedBy(func(r *models.GameRound) bool {
		return r.Game == models.GameTypeBlackjack && r.Outcome == string(blackjack.OutcomeWin) && r.Details["session_id"] == "s-1"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.GameRound).ID = 7
	}).Return(nil)
	mocks.UserRepo.On("AddBalance", ctx, int64(TestUser1ID), int64(2000)).Return(int64(6000), nil)
	mocks.BalanceHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeBlackjackPayout && *h.RelatedID == 7
	})).Return(nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Settle(ctx, &blackjack.Settlement{
		SessionID:   "s-1",
		UserID:      TestUser1ID,
		GuildID:     TestGuildID,
		ChannelID:   "789012",
		Wager:       1000,
		Payout:      2000,
		Outcome:     blackjack.OutcomeWin,
		PlayerScore: 20,
		DealerScore: 18,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(6000), balance)
	uow.AssertCalled(t, "Commit")

	settled := publishedOfType[events.GameSettledEvent](mocks.EventPublisher)
	require.Len(t, settled, 1)
	assert.Equal(t, int64(TestChannelID), settled[0].ChannelID)
	assert.Equal(t, int64(7), settled[0].RoundID)
}

func TestBlackjackWallet_SettleLossReadsBalance(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	wallet, _ := newWalletForTest(mocks, ctx, true)

	mocks.GameRoundRepo.On("Create", ctx, mock.Anything).Return(nil)
	mocks.UserRepo.On("GetByDiscordID", ctx, int64(TestUser1ID)).Return(&models.User{Balance: 4000}, nil)
	mocks.ExpectAnyPublish()

	balance, err := wallet.Settle(ctx, &blackjack.Settlement{
		UserID:  TestUser1ID,
		GuildID: TestGuildID,
		Wager:   1000,
		Outcome: blackjack.OutcomeBust,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4000), balance)
	mocks.UserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
}
