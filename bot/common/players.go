package common

import (
	"context"
	"errors"
	"fmt"

	"elaina/game"
	"elaina/models"
	"elaina/service"
)

// Players loads user records on behalf of the game commands
type Players struct {
	uowFactory      service.UnitOfWorkFactory
	startingBalance int64
}

// NewPlayers creates a player loader that gives new users startingBalance
func NewPlayers(uowFactory service.UnitOfWorkFactory, startingBalance int64) *Players {
	return &Players{uowFactory: uowFactory, startingBalance: startingBalance}
}

// Ensure returns the user's record, creating it on first contact
func (p *Players) Ensure(ctx context.Context, guildID, discordID int64, username string) (*models.User, error) {
	uow := p.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), p.startingBalance)
	user, err := userService.GetOrCreateUser(ctx, discordID, username)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// EnsurePlayable is Ensure plus the gambling ban check
func (p *Players) EnsurePlayable(ctx context.Context, guildID, discordID int64, username string) (*models.User, error) {
	user, err := p.Ensure(ctx, guildID, discordID, username)
	if err != nil {
		return nil, NewSystemError(err, "failed to load player")
	}
	if user.Banned {
		return nil, NewUserError("You are banned from gambling.", "banned user tried to play")
	}
	return user, nil
}

// Play runs an instant game inside its own transaction
func (p *Players) Play(ctx context.Context, guildID int64, play func(service.GameService) (*models.GameResult, error)) (*models.GameResult, error) {
	uow := p.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gameService := service.NewGameService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.GameRoundRepository(), uow.EventBus(), nil)
	result, err := play(gameService)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// StartingBalance is the balance new users receive
func (p *Players) StartingBalance() int64 {
	return p.startingBalance
}

// GameError maps the errors shared by every game to user-facing BotErrors
func GameError(err error) error {
	var botErr *BotError
	switch {
	case errors.As(err, &botErr):
		return err
	case errors.Is(err, service.ErrUserBanned):
		return NewUserError("You are banned from gambling.", "banned user tried to play")
	case errors.Is(err, service.ErrInsufficientBalance), errors.Is(err, game.ErrInsufficientFunds):
		return NewUserError("You don't have enough "+Currency+" for that bet.", "insufficient funds")
	case errors.Is(err, game.ErrInvalidWager), errors.Is(err, service.ErrInvalidAmount):
		return NewUserError("Enter a positive amount or `all`.", "invalid wager")
	default:
		return NewSystemError(err, "game failed")
	}
}
