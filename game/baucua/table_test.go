package baucua

import (
	"context"
	"sync"
	"testing"
	"time"

	"elaina/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWallet struct {
	mu          sync.Mutex
	balances    map[int64]int64
	settlements []*Settlement
	refunds     map[int64]int64
}

func newFakeWallet(balances map[int64]int64) *fakeWallet {
	return &fakeWallet{balances: balances, refunds: make(map[int64]int64)}
}

func (w *fakeWallet) Debit(ctx context.Context, guildID, userID, amount int64, animal Animal) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID] < amount {
		return 0, ErrInsufficientFunds
	}
	w.balances[userID] -= amount
	return w.balances[userID], nil
}

func (w *fakeWallet) Settle(ctx context.Context, settlement *Settlement) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settlements = append(w.settlements, settlement)
	w.balances[settlement.UserID] += settlement.Payout
	return w.balances[settlement.UserID], nil
}

func (w *fakeWallet) Refund(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refunds[userID] += amount
	w.balances[userID] += amount
	return w.balances[userID], nil
}

func (w *fakeWallet) balance(userID int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID]
}

const (
	guild int64 = 42
	owner int64 = 1
	alice int64 = 2
	bob   int64 = 3
)

// rolls maps animals to the scripted rand values that produce them
func rolls(animals ...Animal) *game.SequenceRand {
	values := make([]int, len(animals))
	for n, a := range animals {
		for idx, candidate := range Animals {
			if candidate == a {
				values[n] = idx
			}
		}
	}
	return &game.SequenceRand{Values: values}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name   string
		stakes map[Animal]int64
		dice   Dice
		want   int64
		wins   int
	}{
		{"single match doubles", map[Animal]int64{Crab: 100}, Dice{Crab, Fish, Deer}, 200, 1},
		{"double match triples", map[Animal]int64{Crab: 100}, Dice{Crab, Crab, Deer}, 300, 1},
		{"triple match quadruples", map[Animal]int64{Crab: 100}, Dice{Crab, Crab, Crab}, 400, 1},
		{"miss loses", map[Animal]int64{Gourd: 100}, Dice{Crab, Fish, Deer}, 0, 0},
		{"split stakes", map[Animal]int64{Crab: 100, Fish: 50, Shrimp: 70}, Dice{Crab, Fish, Fish}, 350, 2},
		{"no stakes", nil, Dice{Crab, Fish, Deer}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, wins := Payout(tt.stakes, tt.dice)
			assert.Equal(t, tt.want, got)
			assert.Len(t, wins, tt.wins)
		})
	}
}

func TestParseAnimal(t *testing.T) {
	for input, want := range map[string]Animal{"cua": Crab, "Bầu": Gourd, " TÔM ": Shrimp, "ga": Chicken} {
		got, ok := ParseAnimal(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseAnimal("dragon")
	assert.False(t, ok)
}

func TestRoll(t *testing.T) {
	assert.Equal(t, Dice{Deer, Shrimp, Crab}, Roll(rolls(Deer, Shrimp, Crab)))
}

func TestTable_RollPaysEveryPlayer(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 10000, bob: 10000})
	table := NewTable(wallet, Options{Rand: rolls(Crab, Crab, Fish)})

	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)

	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 1000)
	require.NoError(t, err)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Deer, 500)
	require.NoError(t, err)
	_, snap, err := table.PlaceBet(ctx, round.RoundID, bob, Fish, 2000)
	require.NoError(t, err)

	assert.Equal(t, []int64{alice, bob}, snap.Players)
	assert.Equal(t, int64(1000), snap.Totals[Crab])
	assert.Equal(t, int64(8500), wallet.balance(alice))
	assert.Equal(t, int64(8000), wallet.balance(bob))

	result, err := table.Close(ctx, round.RoundID)
	require.NoError(t, err)
	assert.True(t, result.Rolled)
	assert.Equal(t, Dice{Crab, Crab, Fish}, result.Dice)
	assert.Equal(t, StateSettled, result.State)
	require.Len(t, result.Settled, 2)

	// alice: crab twice pays 3x, deer lost
	assert.Equal(t, int64(1500), result.Settled[0].Wager)
	assert.Equal(t, int64(3000), result.Settled[0].Payout)
	assert.Equal(t, int64(11500), wallet.balance(alice))
	// bob: fish once pays 2x
	assert.Equal(t, int64(4000), result.Settled[1].Payout)
	assert.Equal(t, int64(12000), wallet.balance(bob))

	assert.Zero(t, table.OpenCount())
	_, err = table.Close(ctx, round.RoundID)
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestTable_SinglePlayerIsRefunded(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 10000})
	table := NewTable(wallet, Options{})

	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 1000)
	require.NoError(t, err)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Shrimp, 700)
	require.NoError(t, err)

	result, err := table.Close(ctx, round.RoundID)
	require.NoError(t, err)
	assert.False(t, result.Rolled)
	assert.Equal(t, StateRefunded, result.State)
	assert.Equal(t, map[int64]int64{alice: 1700}, result.Refunded)
	assert.Equal(t, int64(10000), wallet.balance(alice))
	assert.Empty(t, wallet.settlements)
}

func TestTable_StakeCappedPerAnimal(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 1000000})
	table := NewTable(wallet, Options{})
	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)

	accepted, _, err := table.PlaceBet(ctx, round.RoundID, alice, Crab, 200000)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), accepted)

	accepted, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), accepted)

	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 1)
	assert.ErrorIs(t, err, ErrStakeLimit)

	accepted, _, err = table.PlaceBet(ctx, round.RoundID, alice, Fish, 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), accepted)
	assert.Equal(t, int64(650000), wallet.balance(alice))
}

func TestTable_PlaceBetValidation(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 500})
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	table := NewTable(wallet, Options{Now: func() time.Time { return now }})
	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultBettingWindow), round.ClosesAt)

	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 1000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 0)
	assert.ErrorIs(t, err, ErrInvalidStake)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Animal("dragon"), 10)
	assert.ErrorIs(t, err, ErrUnknownAnimal)
	_, _, err = table.PlaceBet(ctx, "missing", alice, Crab, 10)
	assert.ErrorIs(t, err, ErrRoundNotFound)

	now = now.Add(DefaultBettingWindow)
	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Crab, 10)
	assert.ErrorIs(t, err, ErrRoundClosed)
	assert.Equal(t, int64(500), wallet.balance(alice))
}

func TestTable_OneRoundPerOwner(t *testing.T) {
	table := NewTable(newFakeWallet(nil), Options{})

	_, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)
	_, err = table.Open(guild, owner, "other")
	assert.ErrorIs(t, err, ErrRoundExists)

	_, err = table.Open(guild+1, owner, "chan")
	assert.NoError(t, err)
	_, err = table.Open(guild, alice, "chan")
	assert.NoError(t, err)
	assert.Equal(t, 3, table.OpenCount())
}

func TestTable_DeletedMessageRefundsEveryone(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 5000, bob: 5000})
	table := NewTable(wallet, Options{})
	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)
	require.NoError(t, table.AttachMessage(round.RoundID, "chan", "msg"))

	_, _, err = table.PlaceBet(ctx, round.RoundID, alice, Gourd, 1000)
	require.NoError(t, err)
	_, _, err = table.PlaceBet(ctx, round.RoundID, bob, Chicken, 3000)
	require.NoError(t, err)

	result, err := table.Abort(ctx, "msg")
	require.NoError(t, err)
	assert.Equal(t, StateAborted, result.State)
	assert.Equal(t, map[int64]int64{alice: 1000, bob: 3000}, result.Refunded)
	assert.Equal(t, int64(5000), wallet.balance(alice))
	assert.Equal(t, int64(5000), wallet.balance(bob))

	_, err = table.Abort(ctx, "msg")
	assert.ErrorIs(t, err, ErrRoundNotFound)
	_, err = table.Close(ctx, round.RoundID)
	assert.ErrorIs(t, err, ErrRoundNotFound)

	// the owner may open again once the round is gone
	_, err = table.Open(guild, owner, "chan")
	assert.NoError(t, err)
}

func TestTable_AbortAll(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 5000})
	table := NewTable(wallet, Options{})

	first, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)
	_, err = table.Open(guild, bob, "chan")
	require.NoError(t, err)
	_, _, err = table.PlaceBet(ctx, first.RoundID, alice, Deer, 2500)
	require.NoError(t, err)

	results := table.AbortAll(ctx)
	assert.Len(t, results, 2)
	assert.Zero(t, table.OpenCount())
	assert.Equal(t, int64(5000), wallet.balance(alice))
}

func TestTable_ConcurrentBets(t *testing.T) {
	ctx := context.Background()
	wallet := newFakeWallet(map[int64]int64{alice: 1000000, bob: 1000000})
	table := NewTable(wallet, Options{})
	round, err := table.Open(guild, owner, "chan")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, user := range []int64{alice, bob} {
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, _ = table.PlaceBet(ctx, round.RoundID, user, Crab, 20000)
			}()
		}
	}
	wg.Wait()

	snap, err := table.Snapshot(round.RoundID)
	require.NoError(t, err)
	// each player is capped at MaxStake on crab
	assert.Equal(t, 2*MaxStake, snap.Totals[Crab])
	assert.Equal(t, 1000000-MaxStake, wallet.balance(alice))
	assert.Len(t, snap.Players, 2)
}
