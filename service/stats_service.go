package service

import (
	"context"
	"fmt"

	"elaina/models"
)

const recentHistoryLimit = 5

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// GetScoreboard returns the richest users ranked by balance
func (s *statsService) GetScoreboard(ctx context.Context, guildID int64, limit int) ([]*models.ScoreboardEntry, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	entries := make([]*models.ScoreboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &models.ScoreboardEntry{
			Rank:      i + 1,
			DiscordID: user.DiscordID,
			Username:  user.Username,
			Balance:   user.Balance,
		})
	}
	return entries, nil
}

// GetUserStats returns per-game results and the latest ledger entries for a user
func (s *statsService) GetUserStats(ctx context.Context, guildID int64, discordID int64) (*models.UserStats, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	games, err := uow.GameRoundRepository().GetStats(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats: %w", err)
	}

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, discordID, recentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	stats := &models.UserStats{
		User:          user,
		Games:         games,
		RecentHistory: history,
	}

	var rounds, won int
	for _, g := range games {
		stats.NetProfit += g.TotalPayout - g.TotalWager
		rounds += g.RoundsTotal
		won += g.RoundsWon
	}
	if rounds > 0 {
		stats.WinPercentage = float64(won) / float64(rounds) * 100
	}

	return stats, nil
}
