package service

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserBanned          = errors.New("user is banned from gambling")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")

	ErrInvalidTicketNumber = errors.New("ticket number must be exactly 6 digits")
	ErrTicketLimitReached  = errors.New("ticket limit reached for this draw")
	ErrDrawAlreadyDone     = errors.New("draw already conducted")

	ErrEmbedExists   = errors.New("embed already exists")
	ErrEmbedNotFound = errors.New("embed not found")
	ErrInvalidName   = errors.New("invalid embed name")
)

var (
	ErrInvalidDuration      = errors.New("invalid duration, use a number followed by s, m, h, d or w")
	ErrDurationTooLong      = errors.New("duration may not exceed one week")
	ErrMissingPermission    = errors.New("invoker lacks the required permission")
	ErrBotMissingPermission = errors.New("bot lacks the required permission")
	ErrTargetIsSelf         = errors.New("cannot moderate yourself")
	ErrTargetIsOwner        = errors.New("cannot moderate the server owner")
	ErrTargetIsBot          = errors.New("cannot moderate the bot")
	ErrInvokerRoleTooLow    = errors.New("invoker's top role must be above the target's")
	ErrBotRoleTooLow        = errors.New("bot's top role must be above the target's")
)
