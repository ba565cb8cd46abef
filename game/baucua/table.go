package baucua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"elaina/game"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// MaxStake caps one player's total stake on a single animal per round
	MaxStake = game.MaxWager

	// MinPlayers is how many players a round needs to be rolled; fewer are refunded
	MinPlayers = 2

	DefaultBettingWindow = 60 * time.Second
)

var (
	ErrInsufficientFunds = game.ErrInsufficientFunds
	ErrInvalidStake      = game.ErrInvalidWager
	ErrRoundExists       = errors.New("bau cua round already open")
	ErrRoundNotFound     = errors.New("bau cua round not found")
	ErrRoundClosed       = errors.New("bau cua round no longer takes bets")
	ErrStakeLimit        = errors.New("stake limit reached for this animal")
	ErrUnknownAnimal     = errors.New("unknown animal")
)

// Wallet moves bầu cua money. Debit must fail with ErrInsufficientFunds when the
// balance does not cover the amount.
type Wallet interface {
	Debit(ctx context.Context, guildID, userID, amount int64, animal Animal) (int64, error)
	Settle(ctx context.Context, settlement *Settlement) (int64, error)
	Refund(ctx context.Context, guildID, userID, amount int64) (int64, error)
}

// Settlement is one player's share of a rolled round
type Settlement struct {
	RoundID   string
	GuildID   int64
	ChannelID string
	UserID    int64
	Stakes    map[Animal]int64
	Dice      Dice
	Wager     int64
	Payout    int64
	Wins      []Win
}

// State is where a round is in its life
type State int

const (
	StateOpen State = iota
	StateSettled
	StateRefunded
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSettled:
		return "settled"
	case StateRefunded:
		return "refunded"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Round is one betting window and roll
type Round struct {
	mu sync.Mutex

	ID        string
	GuildID   int64
	OwnerID   int64
	ChannelID string
	MessageID string
	ClosesAt  time.Time
	State     State

	stakes map[int64]map[Animal]int64
	// join order, for stable rendering
	players []int64
}

// Snapshot is a render instruction for an open or finished round
type Snapshot struct {
	RoundID   string
	GuildID   int64
	OwnerID   int64
	ChannelID string
	MessageID string
	ClosesAt  time.Time
	State     State
	Totals    map[Animal]int64
	Players   []int64
}

// Result is a finished round
type Result struct {
	Snapshot
	Dice     Dice
	Rolled   bool
	Settled  []*Settlement
	Refunded map[int64]int64
}

func (r *Round) snapshot() Snapshot {
	totals := make(map[Animal]int64, len(Animals))
	for _, stakes := range r.stakes {
		for a, amount := range stakes {
			totals[a] += amount
		}
	}
	return Snapshot{
		RoundID:   r.ID,
		GuildID:   r.GuildID,
		OwnerID:   r.OwnerID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		ClosesAt:  r.ClosesAt,
		State:     r.State,
		Totals:    totals,
		Players:   append([]int64(nil), r.players...),
	}
}

func (r *Round) wagerOf(userID int64) int64 {
	var total int64
	for _, amount := range r.stakes[userID] {
		total += amount
	}
	return total
}

// Options tune a Table. Zero values pick the defaults.
type Options struct {
	Rand          game.Rand
	BettingWindow time.Duration
	Now           func() time.Time
}

type ownerKey struct {
	guildID int64
	ownerID int64
}

// Table owns every open round, at most one per owner per guild
type Table struct {
	wallet Wallet
	rand   game.Rand
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	byOwner   map[ownerKey]*Round
	byID      map[string]*Round
	byMessage map[string]*Round
}

// NewTable creates a bầu cua table paying through wallet
func NewTable(wallet Wallet, opts Options) *Table {
	t := &Table{
		wallet:    wallet,
		rand:      opts.Rand,
		window:    opts.BettingWindow,
		now:       opts.Now,
		byOwner:   make(map[ownerKey]*Round),
		byID:      make(map[string]*Round),
		byMessage: make(map[string]*Round),
	}
	if t.rand == nil {
		t.rand = game.DefaultRand
	}
	if t.window <= 0 {
		t.window = DefaultBettingWindow
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// BettingWindow is how long a round takes bets
func (t *Table) BettingWindow() time.Duration {
	return t.window
}

// Open starts a betting window owned by ownerID
func (t *Table) Open(guildID, ownerID int64, channelID string) (Snapshot, error) {
	key := ownerKey{guildID: guildID, ownerID: ownerID}
	r := &Round{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		OwnerID:   ownerID,
		ChannelID: channelID,
		ClosesAt:  t.now().Add(t.window),
		State:     StateOpen,
		stakes:    make(map[int64]map[Animal]int64),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byOwner[key]; exists {
		return Snapshot{}, ErrRoundExists
	}
	t.byOwner[key] = r
	t.byID[r.ID] = r

	log.WithFields(log.Fields{
		"round_id": r.ID,
		"guild_id": guildID,
		"owner_id": ownerID,
	}).Info("Bau cua round opened")
	return r.snapshot(), nil
}

// AttachMessage remembers where the round is rendered so a deleted message aborts it
func (t *Table) AttachMessage(roundID, channelID, messageID string) error {
	r := t.get(roundID)
	if r == nil {
		return ErrRoundNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State != StateOpen {
		return ErrRoundNotFound
	}
	r.ChannelID = channelID
	r.MessageID = messageID

	t.mu.Lock()
	t.byMessage[messageID] = r
	t.mu.Unlock()
	return nil
}

// PlaceBet debits a stake on animal. A stake that would pass MaxStake for the animal
// is lowered to what is left; the accepted amount is returned.
func (t *Table) PlaceBet(ctx context.Context, roundID string, userID int64, animal Animal, amount int64) (int64, Snapshot, error) {
	if _, ok := animalNames[animal]; !ok {
		return 0, Snapshot{}, ErrUnknownAnimal
	}
	if amount <= 0 {
		return 0, Snapshot{}, ErrInvalidStake
	}

	r := t.get(roundID)
	if r == nil {
		return 0, Snapshot{}, ErrRoundNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State != StateOpen || !t.now().Before(r.ClosesAt) {
		return 0, Snapshot{}, ErrRoundClosed
	}

	current := r.stakes[userID][animal]
	remaining := MaxStake - current
	if remaining <= 0 {
		return 0, Snapshot{}, ErrStakeLimit
	}
	accepted := min(amount, remaining)

	if _, err := t.wallet.Debit(ctx, r.GuildID, userID, accepted, animal); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return 0, Snapshot{}, ErrInsufficientFunds
		}
		return 0, Snapshot{}, fmt.Errorf("failed to debit stake: %w", err)
	}

	if r.stakes[userID] == nil {
		r.stakes[userID] = make(map[Animal]int64, len(Animals))
		r.players = append(r.players, userID)
	}
	r.stakes[userID][animal] += accepted
	return accepted, r.snapshot(), nil
}

// Snapshot returns the current state of an open round
func (t *Table) Snapshot(roundID string) (Snapshot, error) {
	r := t.get(roundID)
	if r == nil {
		return Snapshot{}, ErrRoundNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(), nil
}

// Close ends the betting window. With fewer than MinPlayers players every stake is
// refunded; otherwise the dice are rolled and each player settled.
func (t *Table) Close(ctx context.Context, roundID string) (*Result, error) {
	r := t.get(roundID)
	if r == nil {
		return nil, ErrRoundNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State != StateOpen {
		return nil, ErrRoundNotFound
	}

	if len(r.players) < MinPlayers {
		return t.refundLocked(ctx, r, StateRefunded), nil
	}

	r.State = StateSettled
	t.release(r)

	result := &Result{Dice: Roll(t.rand), Rolled: true}
	var failed error
	for _, userID := range r.players {
		stakes := r.stakes[userID]
		payout, wins := Payout(stakes, result.Dice)
		settlement := &Settlement{
			RoundID:   r.ID,
			GuildID:   r.GuildID,
			ChannelID: r.ChannelID,
			UserID:    userID,
			Stakes:    stakes,
			Dice:      result.Dice,
			Wager:     r.wagerOf(userID),
			Payout:    payout,
			Wins:      wins,
		}
		if _, err := t.wallet.Settle(context.WithoutCancel(ctx), settlement); err != nil {
			log.WithFields(log.Fields{
				"round_id": r.ID,
				"user_id":  userID,
				"payout":   payout,
			}).WithError(err).Error("Failed to settle bau cua player")
			failed = errors.Join(failed, err)
			continue
		}
		result.Settled = append(result.Settled, settlement)
	}
	result.Snapshot = r.snapshot()

	log.WithFields(log.Fields{
		"round_id": r.ID,
		"players":  len(r.players),
		"dice":     result.Dice,
	}).Info("Bau cua round rolled")

	if failed != nil {
		return result, fmt.Errorf("failed to settle round: %w", failed)
	}
	return result, nil
}

// Abort refunds every stake of the open round rendered in messageID
func (t *Table) Abort(ctx context.Context, messageID string) (*Result, error) {
	if messageID == "" {
		return nil, ErrRoundNotFound
	}
	t.mu.Lock()
	r := t.byMessage[messageID]
	t.mu.Unlock()
	if r == nil {
		return nil, ErrRoundNotFound
	}
	return t.abort(ctx, r)
}

// AbortRound refunds every stake of an open round by id
func (t *Table) AbortRound(ctx context.Context, roundID string) (*Result, error) {
	r := t.get(roundID)
	if r == nil {
		return nil, ErrRoundNotFound
	}
	return t.abort(ctx, r)
}

// AbortAll refunds every open round, for shutdown
func (t *Table) AbortAll(ctx context.Context) []*Result {
	t.mu.Lock()
	rounds := make([]*Round, 0, len(t.byID))
	for _, r := range t.byID {
		rounds = append(rounds, r)
	}
	t.mu.Unlock()

	var results []*Result
	for _, r := range rounds {
		if result, err := t.abort(ctx, r); err == nil {
			results = append(results, result)
		}
	}
	return results
}

// OpenCount returns the number of rounds taking bets
func (t *Table) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}

func (t *Table) abort(ctx context.Context, r *Round) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.State != StateOpen {
		return nil, ErrRoundNotFound
	}
	return t.refundLocked(ctx, r, StateAborted), nil
}

// refundLocked returns every stake and tears the round down. Caller holds r.mu.
func (t *Table) refundLocked(ctx context.Context, r *Round, state State) *Result {
	r.State = state
	t.release(r)

	result := &Result{Refunded: make(map[int64]int64, len(r.players))}
	for _, userID := range r.players {
		amount := r.wagerOf(userID)
		if amount <= 0 {
			continue
		}
		if _, err := t.wallet.Refund(context.WithoutCancel(ctx), r.GuildID, userID, amount); err != nil {
			log.WithFields(log.Fields{
				"round_id": r.ID,
				"user_id":  userID,
				"amount":   amount,
			}).WithError(err).Error("Failed to refund bau cua stake")
			continue
		}
		result.Refunded[userID] = amount
	}
	result.Snapshot = r.snapshot()

	log.WithFields(log.Fields{
		"round_id": r.ID,
		"state":    state,
		"players":  len(r.players),
	}).Info("Bau cua round refunded")
	return result
}

func (t *Table) get(roundID string) *Round {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byID[roundID]
}

// release drops r from every index. Caller holds r.mu.
func (t *Table) release(r *Round) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := ownerKey{guildID: r.GuildID, ownerID: r.OwnerID}
	if t.byOwner[key] == r {
		delete(t.byOwner, key)
	}
	delete(t.byID, r.ID)
	if r.MessageID != "" && t.byMessage[r.MessageID] == r {
		delete(t.byMessage, r.MessageID)
	}
}
