package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"elaina/game/baucua"
	"elaina/models"
)

// bauCuaWallet moves bầu cua money through one unit of work per operation
type bauCuaWallet struct {
	uowFactory UnitOfWorkFactory
}

// NewBauCuaWallet adapts the unit of work factory to the bầu cua table
func NewBauCuaWallet(uowFactory UnitOfWorkFactory) baucua.Wallet {
	return &bauCuaWallet{uowFactory: uowFactory}
}

func (w *bauCuaWallet) Debit(ctx context.Context, guildID, userID, amount int64, animal baucua.Animal) (int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := debitWithHistory(ctx, uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(),
		userID, guildID, amount, models.TransactionTypeBauCuaBet, map[string]any{"animal": string(animal)})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return 0, baucua.ErrInsufficientFunds
		}
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

func (w *bauCuaWallet) Settle(ctx context.Context, settlement *baucua.Settlement) (int64, error) {
	uow := w.uowFactory.CreateForGuild(settlement.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stakes := make(map[string]int64, len(settlement.Stakes))
	for animal, amount := range settlement.Stakes {
		stakes[string(animal)] = amount
	}
	dice := make([]string, len(settlement.Dice))
	for n, face := range settlement.Dice {
		dice[n] = string(face)
	}

	round := &models.GameRound{
		Game:      models.GameTypeBauCua,
		DiscordID: settlement.UserID,
		GuildID:   settlement.GuildID,
		Wager:     settlement.Wager,
		Payout:    settlement.Payout,
		Outcome:   BauCuaOutcome(settlement.Wager, settlement.Payout),
		Details: map[string]any{
			"round_id": settlement.RoundID,
			"stakes":   stakes,
			"dice":     dice,
		},
	}
	balance, err := settleRound(ctx, uow, round, models.TransactionTypeBauCuaPayout, settlement.ChannelID,
		"dice "+strings.Join(dice, "-"))
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

func (w *bauCuaWallet) Refund(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := creditWithHistory(ctx, uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(),
		userID, guildID, amount, models.TransactionTypeBauCuaRefund, nil)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// BauCuaOutcome labels a player's round by its net result
func BauCuaOutcome(wager, payout int64) string {
	switch {
	case payout > wager:
		return "win"
	case payout == wager:
		return "push"
	default:
		return "loss"
	}
}
