package blackjack

import (
	"strings"

	"elaina/game"
)

// Card is a rank followed by a suit, e.g. "10H" or "AS"
type Card string

var (
	Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	Suits = []string{"H", "D", "C", "S"}
)

// Rank returns the card's rank code
func (c Card) Rank() string {
	s := string(c)
	if len(s) < 2 {
		return ""
	}
	return s[:len(s)-1]
}

// Suit returns the card's suit code
func (c Card) Suit() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return s[len(s)-1:]
}

// Value is the card's face value with aces counted high
func (c Card) Value() int {
	switch r := c.Rank(); r {
	case "J", "Q", "K":
		return 10
	case "A":
		return 11
	default:
		v := 0
		for _, ch := range r {
			if ch < '0' || ch > '9' {
				return 0
			}
			v = v*10 + int(ch-'0')
		}
		return v
	}
}

// Valid reports whether the card is one of the 52 codes
func (c Card) Valid() bool {
	rankOK := false
	for _, r := range Ranks {
		if r == c.Rank() {
			rankOK = true
			break
		}
	}
	return rankOK && strings.Contains("HDCS", c.Suit()) && c.Suit() != ""
}

// Score totals a hand, demoting aces from 11 to 1 while the hand is over 21
func Score(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Value()
		if c.Rank() == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack reports a two-card 21
func IsBlackjack(cards []Card) bool {
	return len(cards) == 2 && Score(cards) == 21
}

// Shoe hands out cards
type Shoe interface {
	Draw() Card
}

type randomShoe struct {
	rand game.Rand
}

// NewRandomShoe draws every card independently and uniformly from the 52 codes
func NewRandomShoe(r game.Rand) Shoe {
	if r == nil {
		r = game.DefaultRand
	}
	return &randomShoe{rand: r}
}

func (s *randomShoe) Draw() Card {
	return Card(Ranks[s.rand.IntN(len(Ranks))] + Suits[s.rand.IntN(len(Suits))])
}
