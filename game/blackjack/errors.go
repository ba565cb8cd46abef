package blackjack

import (
	"errors"

	"elaina/game"
)

var (
	ErrInvalidWager         = game.ErrInvalidWager
	ErrInsufficientFunds    = game.ErrInsufficientFunds
	ErrSessionAlreadyActive = errors.New("blackjack session already active")
	ErrNotSessionOwner      = errors.New("not the owner of this blackjack session")
	ErrSessionNotFound      = errors.New("blackjack session not found")
	ErrInvalidCommand       = errors.New("command not allowed in the current state")
)
