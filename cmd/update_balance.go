package cmd

import (
	"context"
	"fmt"

	"elaina/bot/common"
	"elaina/config"
	"elaina/database"
	"elaina/events"
	"elaina/repository"
	"elaina/service"

	log "github.com/sirupsen/logrus"
)

// UpdateBalance applies an admin adjustment outside Discord
func UpdateBalance(ctx context.Context, guildID, discordID, delta int64, reason string) error {
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	uow := uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	userService := service.NewUserService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), cfg.StartingBalance)
	user, err := userService.AdjustBalance(ctx, discordID, delta, reason)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id":    guildID,
		"discord_id":  discordID,
		"delta":       delta,
		"new_balance": user.Balance,
	}).Info("Balance updated")
	fmt.Printf("Balance of %d is now %s\n", discordID, common.FormatCoins(user.Balance))
	return nil
}
