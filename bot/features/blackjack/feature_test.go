package blackjack

import (
	"context"
	"errors"
	"sync"
	"testing"

	bj "elaina/game/blackjack"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWallet struct {
	mu      sync.Mutex
	balance int64
	refunds int
}

func (w *memoryWallet) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, nil
}

func (w *memoryWallet) Debit(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance < amount {
		return 0, bj.ErrInsufficientFunds
	}
	w.balance -= amount
	return w.balance, nil
}

func (w *memoryWallet) Settle(ctx context.Context, settlement *bj.Settlement) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += settlement.Payout
	return w.balance, nil
}

func (w *memoryWallet) Refund(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refunds++
	w.balance += amount
	return w.balance, nil
}

// fixedShoe deals a dealer 18 and a player 9
type fixedShoe struct{ pos int }

func (s *fixedShoe) Draw() bj.Card {
	cards := []bj.Card{"10H", "8D", "5H", "4D"}
	c := cards[s.pos%len(cards)]
	s.pos++
	return c
}

func startGame(t *testing.T, wallet *memoryWallet) (*Feature, *bj.View) {
	t.Helper()
	manager := bj.NewManager(wallet, bj.Options{Shoe: &fixedShoe{}})
	view, err := manager.Start(context.Background(), bj.StartRequest{
		UserID:    7,
		GuildID:   1,
		ChannelID: "chan",
		WagerSpec: "1000",
	})
	require.NoError(t, err)
	return NewFeature(nil, manager, nil), view
}

func TestTrackMessage_AttachesPostedMessage(t *testing.T) {
	wallet := &memoryWallet{balance: 5000}
	f, view := startGame(t, wallet)

	aborted := f.trackMessage(context.Background(), view.SessionID, func() (*discordgo.Message, error) {
		return &discordgo.Message{ID: "msg-1", ChannelID: "chan"}, nil
	})
	assert.Nil(t, aborted)
	assert.Equal(t, int64(4000), wallet.balance)

	refunded, err := f.manager.Abort(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, bj.StateAborted, refunded.State)
	assert.Equal(t, int64(5000), wallet.balance)
}

func TestTrackMessage_RefundsWhenMessageCannotBeFetched(t *testing.T) {
	wallet := &memoryWallet{balance: 5000}
	f, view := startGame(t, wallet)

	aborted := f.trackMessage(context.Background(), view.SessionID, func() (*discordgo.Message, error) {
		return nil, errors.New("HTTP 500 Internal Server Error")
	})
	require.NotNil(t, aborted)
	assert.Equal(t, bj.OutcomeAborted, aborted.Outcome)
	assert.False(t, aborted.ButtonsActive)
	assert.Equal(t, int64(5000), wallet.balance)
	assert.Equal(t, 1, wallet.refunds)
	assert.False(t, f.manager.HasSession(7))
}

func TestTrackMessage_SettledGameIsLeftAlone(t *testing.T) {
	wallet := &memoryWallet{balance: 5000}
	f, view := startGame(t, wallet)

	_, err := f.manager.Handle(context.Background(), bj.Command{Kind: bj.CommandStand, UserID: 7, SessionID: view.SessionID}, nil)
	require.NoError(t, err)

	aborted := f.trackMessage(context.Background(), view.SessionID, func() (*discordgo.Message, error) {
		return nil, errors.New("timeout")
	})
	assert.Nil(t, aborted)
	assert.Equal(t, 0, wallet.refunds)
}
