package repository

import (
	"context"
	"fmt"

	"elaina/models"
)

// WarningRepository stores moderation warnings for one guild
type WarningRepository struct {
	q       queryable
	guildID int64
}

func newWarningRepository(tx queryable, guildID int64) *WarningRepository {
	return &WarningRepository{q: tx, guildID: guildID}
}

// Create inserts a warning in the repository's guild
func (r *WarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	warning.GuildID = r.guildID

	query := `
		INSERT INTO warnings (guild_id, discord_id, moderator_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, warning.GuildID, warning.DiscordID, warning.ModeratorID, warning.Reason).
		Scan(&warning.ID, &warning.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warning for user %d: %w", warning.DiscordID, err)
	}
	return nil
}

// ListByMember returns the member's warnings, newest first
func (r *WarningRepository) ListByMember(ctx context.Context, discordID int64, limit int) ([]*models.Warning, error) {
	query := `
		SELECT id, guild_id, discord_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND discord_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.q.Query(ctx, query, r.guildID, discordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %d: %w", discordID, err)
	}
	defer rows.Close()

	var warnings []*models.Warning
	for rows.Next() {
		var w models.Warning
		if err := rows.Scan(&w.ID, &w.GuildID, &w.DiscordID, &w.ModeratorID, &w.Reason, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warnings: %w", err)
	}
	return warnings, nil
}

// CountByMember returns how many warnings the member has in this guild
func (r *WarningRepository) CountByMember(ctx context.Context, discordID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM warnings WHERE guild_id = $1 AND discord_id = $2`,
		r.guildID, discordID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %d: %w", discordID, err)
	}
	return count, nil
}
