// Package game holds the rules shared by every game of chance the bot runs.
package game

import (
	"errors"
	"strconv"
	"strings"
)

// MaxWager caps a single bet in every game
const MaxWager int64 = 250000

// WagerAll is the wager spec meaning "as much as allowed"
const WagerAll = "all"

var (
	ErrInvalidWager      = errors.New("invalid wager")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ResolveWager turns a user-supplied wager spec into an amount.
// "all" means min(balance, limit); explicit amounts are clamped to limit
// and must not exceed the balance.
func ResolveWager(spec string, balance, limit int64) (int64, error) {
	if balance <= 0 {
		return 0, ErrInsufficientFunds
	}

	spec = strings.TrimSpace(strings.ToLower(spec))
	if spec == WagerAll {
		return min(balance, limit), nil
	}

	amount, err := strconv.ParseInt(strings.ReplaceAll(spec, ",", ""), 10, 64)
	if err != nil || amount <= 0 {
		return 0, ErrInvalidWager
	}
	amount = min(amount, limit)
	if amount > balance {
		return 0, ErrInsufficientFunds
	}
	return amount, nil
}

// ResolveWagerClamped is ResolveWager but an explicit amount above the
// balance is lowered to the balance instead of rejected.
func ResolveWagerClamped(spec string, balance, limit int64) (int64, error) {
	return ResolveWager(spec, balance, min(limit, max(balance, 1)))
}

// ResolveWagerStrict is ResolveWager but an explicit amount must be covered by the
// balance before the limit lowers it.
func ResolveWagerStrict(spec string, balance, limit int64) (int64, error) {
	amount, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(spec), ",", ""), 10, 64)
	if err == nil && amount > balance {
		return 0, ErrInsufficientFunds
	}
	return ResolveWager(spec, balance, limit)
}
