package repository

import (
	"context"
	"fmt"

	"elaina/models"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

func newGuildSettingsRepository(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	// The no-op update makes RETURNING yield the existing row on conflict
	query := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, greet_channel_id, greet_message, log_channel_id, updated_at
	`

	var settings models.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.GreetChannelID,
		&settings.GreetMessage,
		&settings.LogChannelID,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings for %d: %w", guildID, err)
	}
	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET greet_channel_id = $2, greet_message = $3, log_channel_id = $4, updated_at = NOW()
		WHERE guild_id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		settings.GuildID,
		settings.GreetChannelID,
		settings.GreetMessage,
		settings.LogChannelID,
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for %d: %w", settings.GuildID, err)
	}
	return nil
}
