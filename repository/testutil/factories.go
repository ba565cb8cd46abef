package testutil

import (
	"time"

	"elaina/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   100000,
		BalanceAfter:    90000,
		ChangeAmount:    -10000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestGameRound creates a settled round with the given wager and payout
func CreateTestGameRound(discordID int64, game models.GameType, wager, payout int64) *models.GameRound {
	outcome := "loss"
	if payout > wager {
		outcome = "win"
	}
	return &models.GameRound{
		Game:      game,
		DiscordID: discordID,
		Wager:     wager,
		Payout:    payout,
		Outcome:   outcome,
		Details:   map[string]any{"test": true},
	}
}

// CreateTestTicket creates an unsaved lottery ticket
func CreateTestTicket(discordID int64, drawDate time.Time, number string) *models.LotteryTicket {
	return &models.LotteryTicket{
		DrawDate:     drawDate,
		DiscordID:    discordID,
		TicketNumber: number,
		Price:        244,
	}
}

// DrawDate returns the given calendar day as a draw date
func DrawDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
