// Package blackjack runs per-user blackjack sessions against the house.
package blackjack

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
	// MaxWager caps a single blackjack bet
	MaxWager = game.MaxWager

	DefaultDealerDelay    = time.Second
	DefaultSessionTimeout = 180 * time.Second

	dealerStandsAt = 18
)

// Wallet moves money for the engine. Debit must fail with ErrInsufficientFunds
// when the balance does not cover the amount.
type Wallet interface {
	Balance(ctx context.Context, guildID, userID int64) (int64, error)
	Debit(ctx context.Context, guildID, userID, amount int64) (int64, error)
	Settle(ctx context.Context, settlement *Settlement) (int64, error)
	Refund(ctx context.Context, guildID, userID, amount int64) (int64, error)
}

// Settlement describes a finished session for the wallet to pay out and record
type Settlement struct {
	SessionID   string
	UserID      int64
	GuildID     int64
	ChannelID   string
	Wager       int64
	Payout      int64
	Outcome     Outcome
	PlayerCards []Card
	DealerCards []Card
	PlayerScore int
	DealerScore int
}

// CommandKind is a player action
type CommandKind int

const (
	CommandDraw CommandKind = iota
	CommandStand
)

// Command is a button press routed to a session
type Command struct {
	Kind      CommandKind
	UserID    int64
	SessionID string
}

// StartRequest opens a new session
type StartRequest struct {
	UserID    int64
	GuildID   int64
	ChannelID string
	WagerSpec string
}

// Options tune a Manager. A nil Shoe deals randomly and a zero SessionTimeout
// means DefaultSessionTimeout.
type Options struct {
	Shoe           Shoe
	// DealerDelay is the pause before each dealer draw, zero for none
	DealerDelay    time.Duration
	SessionTimeout time.Duration
	Now            func() time.Time
}

// Manager owns every active session, at most one per user
type Manager struct {
	wallet Wallet
	shoe   Shoe

	dealerDelay    time.Duration
	sessionTimeout time.Duration
	now            func() time.Time

	mu        sync.Mutex
	byUser    map[int64]*Session
	byID      map[string]*Session
	byMessage map[string]*Session
}

// NewManager creates a session manager paying through wallet
func NewManager(wallet Wallet, opts Options) *Manager {
	m := &Manager{
		wallet:         wallet,
		shoe:           opts.Shoe,
		dealerDelay:    opts.DealerDelay,
		sessionTimeout: opts.SessionTimeout,
		now:            opts.Now,
		byUser:         make(map[int64]*Session),
		byID:           make(map[string]*Session),
		byMessage:      make(map[string]*Session),
	}
	if m.shoe == nil {
		m.shoe = NewRandomShoe(nil)
	}
	if m.dealerDelay < 0 {
		m.dealerDelay = 0
	}
	if m.sessionTimeout == 0 {
		m.sessionTimeout = DefaultSessionTimeout
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Start validates the wager, debits it and deals the opening hands
func (m *Manager) Start(ctx context.Context, req StartRequest) (*View, error) {
	now := m.now()
	s := &Session{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		GuildID:      req.GuildID,
		ChannelID:    req.ChannelID,
		State:        StateCreated,
		CreatedAt:    now,
		LastActivity: now,
	}

	// Claim the user's slot before touching the wallet so a concurrent start is refused
	m.mu.Lock()
	if _, exists := m.byUser[req.UserID]; exists {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyActive
	}
	m.byUser[req.UserID] = s
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := m.wallet.Balance(ctx, req.GuildID, req.UserID)
	if err != nil {
		m.release(s)
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	wager, err := game.ResolveWager(req.WagerSpec, balance, MaxWager)
	if err != nil {
		m.release(s)
		return nil, err
	}

	newBalance, err := m.wallet.Debit(ctx, req.GuildID, req.UserID, wager)
	if err != nil {
		m.release(s)
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit wager: %w", err)
	}

	s.Wager = wager
	s.Balance = newBalance
	s.DealerCards = m.dealDealer()
	s.PlayerCards = m.dealPlayer()
	s.State = StatePlayerTurn

	m.mu.Lock()
	m.byID[s.ID] = s
	m.mu.Unlock()

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"guild_id":   s.GuildID,
		"wager":      wager,
	}).Info("Blackjack session started")

	return s.view(), nil
}

// AttachMessage remembers where the session is rendered so a deleted message can abort it
func (m *Manager) AttachMessage(sessionID, channelID, messageID string) error {
	s := m.get(sessionID)
	if s == nil {
		return ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State == StateSettled || s.State == StateAborted {
		return ErrSessionNotFound
	}
	s.ChannelID = channelID
	s.MessageID = messageID

	m.mu.Lock()
	m.byMessage[messageID] = s
	m.mu.Unlock()
	return nil
}

// Handle applies a player command. progress, if non-nil, receives a view after every dealer draw.
func (m *Manager) Handle(ctx context.Context, cmd Command, progress func(*View)) (*View, error) {
	s := m.get(cmd.SessionID)
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.UserID != cmd.UserID {
		return nil, ErrNotSessionOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != StatePlayerTurn {
		return nil, ErrSessionNotFound
	}
	s.LastActivity = m.now()

	switch cmd.Kind {
	case CommandDraw:
		return m.draw(ctx, s)
	case CommandStand:
		return m.stand(ctx, s, progress)
	default:
		return nil, ErrInvalidCommand
	}
}

func (m *Manager) draw(ctx context.Context, s *Session) (*View, error) {
	s.PlayerCards = append(s.PlayerCards, m.shoe.Draw())
	if Score(s.PlayerCards) > 21 {
		return m.settle(ctx, s, OutcomeBust)
	}
	return s.view(), nil
}

func (m *Manager) stand(ctx context.Context, s *Session, progress func(*View)) (*View, error) {
	s.State = StateDealerTurn
	playerScore := Score(s.PlayerCards)

	if IsBlackjack(s.DealerCards) && !IsBlackjack(s.PlayerCards) {
		return m.settle(ctx, s, OutcomeDealerBlackjack)
	}

	for Score(s.DealerCards) < dealerStandsAt {
		m.pause(ctx)
		s.DealerCards = append(s.DealerCards, m.shoe.Draw())
		if progress != nil {
			progress(s.view())
		}
	}

	dealerScore := Score(s.DealerCards)
	switch {
	case dealerScore > 21:
		return m.settle(ctx, s, OutcomeDealerBust)
	case dealerScore == playerScore:
		return m.settle(ctx, s, OutcomePush)
	case dealerScore > playerScore:
		return m.settle(ctx, s, OutcomeLoss)
	default:
		return m.settle(ctx, s, OutcomeWin)
	}
}

// pause waits between dealer draws; a cancelled context skips the wait but not the draw
func (m *Manager) pause(ctx context.Context) {
	if m.dealerDelay == 0 {
		return
	}
	timer := time.NewTimer(m.dealerDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// settle pays out and tears the session down. Caller holds s.mu.
func (m *Manager) settle(ctx context.Context, s *Session, outcome Outcome) (*View, error) {
	s.State = StateSettled
	s.Outcome = outcome
	m.release(s)

	settlement := &Settlement{
		SessionID:   s.ID,
		UserID:      s.UserID,
		GuildID:     s.GuildID,
		ChannelID:   s.ChannelID,
		Wager:       s.Wager,
		Payout:      outcome.Payout(s.Wager),
		Outcome:     outcome,
		PlayerCards: append([]Card(nil), s.PlayerCards...),
		DealerCards: append([]Card(nil), s.DealerCards...),
		PlayerScore: Score(s.PlayerCards),
		DealerScore: Score(s.DealerCards),
	}

	balance, err := m.wallet.Settle(context.WithoutCancel(ctx), settlement)
	if err != nil {
		log.WithFields(log.Fields{
			"session_id": s.ID,
			"user_id":    s.UserID,
			"outcome":    outcome,
			"payout":     settlement.Payout,
		}).WithError(err).Error("Failed to settle blackjack session")
		return s.view(), fmt.Errorf("failed to settle session: %w", err)
	}
	s.Balance = balance

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"outcome":    outcome,
		"payout":     settlement.Payout,
	}).Info("Blackjack session settled")

	return s.view(), nil
}

// Abort refunds and removes the unfinished session rendered in messageID
func (m *Manager) Abort(ctx context.Context, messageID string) (*View, error) {
	if messageID == "" {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	target := m.byMessage[messageID]
	m.mu.Unlock()

	if target == nil {
		return nil, ErrSessionNotFound
	}
	return m.abort(ctx, target)
}

// AbortSession refunds and removes a session by id. Used when rendering fails after the debit.
func (m *Manager) AbortSession(ctx context.Context, sessionID string) (*View, error) {
	s := m.get(sessionID)
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return m.abort(ctx, s)
}

func (m *Manager) abort(ctx context.Context, s *Session) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.abortLocked(ctx, s)
}

// abortLocked refunds and tears the session down. Caller holds s.mu.
func (m *Manager) abortLocked(ctx context.Context, s *Session) (*View, error) {
	if s.State == StateSettled || s.State == StateAborted {
		return nil, ErrSessionNotFound
	}

	s.State = StateAborted
	s.Outcome = OutcomeAborted
	m.release(s)

	balance, err := m.wallet.Refund(context.WithoutCancel(ctx), s.GuildID, s.UserID, s.Wager)
	if err != nil {
		log.WithFields(log.Fields{
			"session_id": s.ID,
			"user_id":    s.UserID,
			"wager":      s.Wager,
		}).WithError(err).Error("Failed to refund aborted blackjack session")
		return s.view(), fmt.Errorf("failed to refund wager: %w", err)
	}
	s.Balance = balance

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"user_id":    s.UserID,
		"wager":      s.Wager,
	}).Info("Blackjack session aborted and refunded")

	return s.view(), nil
}

// ExpireStale closes sessions idle in the player's turn for longer than the timeout.
// The wager stays forfeited unless the session never got a message, since then the
// player never saw the game; those are refunded. The returned views let the caller
// disable the buttons.
func (m *Manager) ExpireStale(ctx context.Context) []*View {
	cutoff := m.now().Add(-m.sessionTimeout)

	m.mu.Lock()
	candidates := make([]*Session, 0)
	for _, s := range m.byID {
		candidates = append(candidates, s)
	}
	m.mu.Unlock()

	var expired []*View
	for _, s := range candidates {
		if !s.mu.TryLock() {
			// busy with a command, so not idle
			continue
		}
		if s.State == StatePlayerTurn && s.LastActivity.Before(cutoff) {
			var view *View
			if s.MessageID == "" {
				view, _ = m.abortLocked(ctx, s)
			} else {
				view, _ = m.settle(ctx, s, OutcomeTimeout)
			}
			if view != nil {
				expired = append(expired, view)
			}
		}
		s.mu.Unlock()
	}
	return expired
}

// ActiveCount returns the number of sessions in progress
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}

// HasSession reports whether userID has a session in progress
func (m *Manager) HasSession(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byUser[userID]
	return ok
}

func (m *Manager) get(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[sessionID]
}

// release drops s from every index. Caller holds s.mu.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byUser[s.UserID] == s {
		delete(m.byUser, s.UserID)
	}
	delete(m.byID, s.ID)
	if s.MessageID != "" && m.byMessage[s.MessageID] == s {
		delete(m.byMessage, s.MessageID)
	}
}

// dealDealer re-deals until the dealer's two cards score 17 to 21
func (m *Manager) dealDealer() []Card {
	for {
		cards := []Card{m.shoe.Draw(), m.shoe.Draw()}
		if score := Score(cards); score >= 17 && score <= 21 {
			return cards
		}
	}
}

// dealPlayer re-deals while the player's two cards score 10 or more
func (m *Manager) dealPlayer() []Card {
	for {
		cards := []Card{m.shoe.Draw(), m.shoe.Draw()}
		if Score(cards) < 10 {
			return cards
		}
	}
}
