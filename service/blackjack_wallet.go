package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"elaina/events"
	"elaina/game/blackjack"
	"elaina/models"
)

// blackjackWallet moves blackjack money through one unit of work per operation
type blackjackWallet struct {
	uowFactory UnitOfWorkFactory
}

// NewBlackjackWallet adapts the unit of work factory to the blackjack engine
func NewBlackjackWallet(uowFactory UnitOfWorkFactory) blackjack.Wallet {
	return &blackjackWallet{uowFactory: uowFactory}
}

func (w *blackjackWallet) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, nil
	}
	return user.Balance, nil
}

func (w *blackjackWallet) Debit(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := debitWithHistory(ctx, uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(),
		userID, guildID, amount, models.TransactionTypeBlackjackBet, nil)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return 0, blackjack.ErrInsufficientFunds
		}
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

func (w *blackjackWallet) Settle(ctx context.Context, settlement *blackjack.Settlement) (int64, error) {
	uow := w.uowFactory.CreateForGuild(settlement.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round := &models.GameRound{
		Game:      models.GameTypeBlackjack,
		DiscordID: settlement.UserID,
		GuildID:   settlement.GuildID,
		Wager:     settlement.Wager,
		Payout:    settlement.Payout,
		Outcome:   string(settlement.Outcome),
		Details: map[string]any{
			"session_id":   settlement.SessionID,
			"player_cards": settlement.PlayerCards,
			"dealer_cards": settlement.DealerCards,
			"player_score": settlement.PlayerScore,
			"dealer_score": settlement.DealerScore,
		},
	}
	balance, err := settleRound(ctx, uow, round, models.TransactionTypeBlackjackPayout, settlement.ChannelID,
		fmt.Sprintf("player %d vs dealer %d", settlement.PlayerScore, settlement.DealerScore))
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

func (w *blackjackWallet) Refund(ctx context.Context, guildID, userID, amount int64) (int64, error) {
	uow := w.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := creditWithHistory(ctx, uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(),
		userID, guildID, amount, models.TransactionTypeBlackjackRefund, nil)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}

// settleRound records a finished round, credits its payout and announces it.
// Callers own the unit of work and commit it.
func settleRound(ctx context.Context, uow UnitOfWork, round *models.GameRound, payoutType models.TransactionType, channel, summary string) (int64, error) {
	if err := uow.GameRoundRepository().Create(ctx, round); err != nil {
		return 0, fmt.Errorf("failed to record %s round: %w", round.Game, err)
	}

	var balance int64
	if round.Payout > 0 {
		related := models.RelatedTypeGameRound
		newBalance, err := uow.UserRepository().AddBalance(ctx, round.DiscordID, round.Payout)
		if err != nil {
			return 0, fmt.Errorf("failed to credit payout: %w", err)
		}
		history := &models.BalanceHistory{
			DiscordID:       round.DiscordID,
			GuildID:         round.GuildID,
			BalanceBefore:   newBalance - round.Payout,
			BalanceAfter:    newBalance,
			ChangeAmount:    round.Payout,
			TransactionType: payoutType,
			TransactionMetadata: map[string]any{
				"outcome": round.Outcome,
			},
			RelatedID:   &round.ID,
			RelatedType: &related,
		}
		if err := RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history); err != nil {
			return 0, err
		}
		balance = newBalance
	} else {
		user, err := uow.UserRepository().GetByDiscordID(ctx, round.DiscordID)
		if err != nil {
			return 0, fmt.Errorf("failed to get user: %w", err)
		}
		if user != nil {
			balance = user.Balance
		}
	}

	channelID, _ := strconv.ParseInt(channel, 10, 64)
	uow.EventBus().Publish(events.GameSettledEvent{
		RoundID:   round.ID,
		Game:      round.Game,
		UserID:    round.DiscordID,
		GuildID:   round.GuildID,
		Wager:     round.Wager,
		Payout:    round.Payout,
		Outcome:   round.Outcome,
		Summary:   summary,
		ChannelID: channelID,
	})
	return balance, nil
}
