package blackjack

import (
	"sync"
	"time"
)

// State is a session's position in the game
type State int

const (
	StateCreated State = iota
	StatePlayerTurn
	StateDealerTurn
	StateSettled
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePlayerTurn:
		return "player_turn"
	case StateDealerTurn:
		return "dealer_turn"
	case StateSettled:
		return "settled"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is how a finished session ended
type Outcome string

const (
	OutcomeNone            Outcome = ""
	OutcomeBust            Outcome = "bust"
	OutcomeDealerBlackjack Outcome = "dealer_blackjack"
	OutcomeDealerBust      Outcome = "dealer_bust"
	OutcomePush            Outcome = "push"
	OutcomeLoss            Outcome = "loss"
	OutcomeWin             Outcome = "win"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeAborted         Outcome = "aborted"
)

// Payout returns what the outcome credits back for wager w
func (o Outcome) Payout(w int64) int64 {
	switch o {
	case OutcomeDealerBust, OutcomeWin:
		return 2 * w
	case OutcomePush, OutcomeAborted:
		return w
	default:
		return 0
	}
}

// Session is one user's game in progress
type Session struct {
	mu sync.Mutex

	ID        string
	UserID    int64
	GuildID   int64
	ChannelID string
	MessageID string
	Wager     int64

	PlayerCards []Card
	DealerCards []Card

	State   State
	Outcome Outcome
	// Balance after the most recent wallet operation
	Balance int64

	CreatedAt    time.Time
	LastActivity time.Time
}

func (s *Session) view() *View {
	v := &View{
		SessionID:   s.ID,
		UserID:      s.UserID,
		GuildID:     s.GuildID,
		ChannelID:   s.ChannelID,
		MessageID:   s.MessageID,
		Wager:       s.Wager,
		PlayerCards: append([]Card(nil), s.PlayerCards...),
		DealerCards: append([]Card(nil), s.DealerCards...),
		PlayerScore: Score(s.PlayerCards),
		State:       s.State,
		Outcome:     s.Outcome,
		Balance:     s.Balance,
	}

	v.DealerHidden = s.State == StateCreated || s.State == StatePlayerTurn ||
		(s.State == StateSettled && s.Outcome == OutcomeBust) || s.Outcome == OutcomeTimeout
	if v.DealerHidden && len(s.DealerCards) > 0 {
		v.DealerScore = s.DealerCards[0].Value()
	} else {
		v.DealerScore = Score(s.DealerCards)
	}

	v.ButtonsActive = s.State == StatePlayerTurn
	if s.State == StateSettled || s.State == StateAborted {
		v.Payout = s.Outcome.Payout(s.Wager)
		v.BalanceDelta = v.Payout - s.Wager
	}
	return v
}

// View is a render instruction for the presentation layer
type View struct {
	SessionID string
	UserID    int64
	GuildID   int64
	ChannelID string
	MessageID string
	Wager     int64

	PlayerCards  []Card
	DealerCards  []Card
	PlayerScore  int
	DealerScore  int
	DealerHidden bool

	State   State
	Outcome Outcome
	// Payout credited at settlement; BalanceDelta is relative to the pre-game balance
	Payout       int64
	BalanceDelta int64
	Balance      int64

	ButtonsActive bool
}

// Finished reports whether no further commands are accepted
func (v *View) Finished() bool {
	return v.State == StateSettled || v.State == StateAborted
}
