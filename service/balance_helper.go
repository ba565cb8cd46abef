package service

import (
	"context"
	"fmt"

	"elaina/events"
	"elaina/models"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the matching events.
// Every balance mutation goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo BalanceHistoryRepository, eventPublisher EventPublisher, history *models.BalanceHistory) error {
	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		GuildID:         history.GuildID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
	}).Debug("Publishing BalanceChangeEvent")
	eventPublisher.Publish(event)

	if history.TransactionType == models.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			eventPublisher.Publish(events.UserCreatedEvent{
				DiscordID:      history.DiscordID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			})
		}
	}

	return nil
}

// debitWithHistory deducts amount and records the change in one step
func debitWithHistory(ctx context.Context, userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, eventPublisher EventPublisher, discordID, guildID, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	newBalance, err := userRepo.DeductBalance(ctx, discordID, amount)
	if err != nil {
		return 0, err
	}

	history := &models.BalanceHistory{
		DiscordID:           discordID,
		GuildID:             guildID,
		BalanceBefore:       newBalance + amount,
		BalanceAfter:        newBalance,
		ChangeAmount:        -amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, balanceHistoryRepo, eventPublisher, history); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// creditWithHistory adds amount and records the change in one step
func creditWithHistory(ctx context.Context, userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, eventPublisher EventPublisher, discordID, guildID, amount int64, txType models.TransactionType, metadata map[string]any) (int64, error) {
	newBalance, err := userRepo.AddBalance(ctx, discordID, amount)
	if err != nil {
		return 0, err
	}

	history := &models.BalanceHistory{
		DiscordID:           discordID,
		GuildID:             guildID,
		BalanceBefore:       newBalance - amount,
		BalanceAfter:        newBalance,
		ChangeAmount:        amount,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, balanceHistoryRepo, eventPublisher, history); err != nil {
		return 0, err
	}
	return newBalance, nil
}
