package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"elaina/models"
)

// GameRoundRepository stores settled rounds of every game
type GameRoundRepository struct {
	q       queryable
	guildID int64
}

func newGameRoundRepository(tx queryable, guildID int64) *GameRoundRepository {
	return &GameRoundRepository{q: tx, guildID: guildID}
}

// Create inserts the round and fills in its ID and timestamp
func (r *GameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	detailsJSON, err := json.Marshal(round.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal round details: %w", err)
	}
	if round.GuildID == 0 {
		round.GuildID = r.guildID
	}

	query := `
		INSERT INTO game_rounds (game, discord_id, guild_id, wager, payout, outcome, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = r.q.QueryRow(ctx, query,
		round.Game,
		round.DiscordID,
		round.GuildID,
		round.Wager,
		round.Payout,
		round.Outcome,
		detailsJSON,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s round for user %d: %w", round.Game, round.DiscordID, err)
	}
	return nil
}

// GetStats aggregates the user's rounds per game across all guilds.
// A round counts as won when it paid out more than the wager.
func (r *GameRoundRepository) GetStats(ctx context.Context, discordID int64) ([]*models.GameStats, error) {
	query := `
		SELECT game,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE payout > wager),
		       COALESCE(SUM(wager), 0),
		       COALESCE(SUM(payout), 0)
		FROM game_rounds
		WHERE discord_id = $1
		GROUP BY game
		ORDER BY game
	`

	rows, err := r.q.Query(ctx, query, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for user %d: %w", discordID, err)
	}
	defer rows.Close()

	var stats []*models.GameStats
	for rows.Next() {
		var s models.GameStats
		if err := rows.Scan(&s.Game, &s.RoundsTotal, &s.RoundsWon, &s.TotalWager, &s.TotalPayout); err != nil {
			return nil, fmt.Errorf("failed to scan game stats: %w", err)
		}
		stats = append(stats, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game stats: %w", err)
	}
	return stats, nil
}
