package repository

import (
	"context"
	"errors"
	"fmt"

	"elaina/models"
	"elaina/service"

	"github.com/jackc/pgx/v5"
)

const embedColumns = `
	id, guild_id, name,
	COALESCE(title, ''), COALESCE(description, ''), color,
	COALESCE(author_name, ''), COALESCE(author_icon_url, ''),
	COALESCE(footer_text, ''), COALESCE(footer_icon_url, ''), footer_timestamp,
	COALESCE(thumbnail_url, ''), COALESCE(image_url, ''),
	created_at, updated_at`

// EmbedRepository stores a guild's named embeds. Names compare case-insensitively.
type EmbedRepository struct {
	q       queryable
	guildID int64
}

func newEmbedRepository(tx queryable, guildID int64) *EmbedRepository {
	return &EmbedRepository{q: tx, guildID: guildID}
}

func scanEmbed(row pgx.Row) (*models.StoredEmbed, error) {
	var e models.StoredEmbed
	err := row.Scan(
		&e.ID, &e.GuildID, &e.Name,
		&e.Title, &e.Description, &e.Color,
		&e.AuthorName, &e.AuthorIconURL,
		&e.FooterText, &e.FooterIconURL, &e.FooterTimestamp,
		&e.ThumbnailURL, &e.ImageURL,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// nullIfEmpty stores unset text fields as NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts the embed, failing with ErrEmbedExists on a name clash
func (r *EmbedRepository) Create(ctx context.Context, embed *models.StoredEmbed) error {
	embed.GuildID = r.guildID

	query := `
		INSERT INTO embeds (guild_id, name, title, description, color, author_name, author_icon_url,
		                    footer_text, footer_icon_url, footer_timestamp, thumbnail_url, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		embed.GuildID,
		embed.Name,
		nullIfEmpty(embed.Title),
		nullIfEmpty(embed.Description),
		embed.Color,
		nullIfEmpty(embed.AuthorName),
		nullIfEmpty(embed.AuthorIconURL),
		nullIfEmpty(embed.FooterText),
		nullIfEmpty(embed.FooterIconURL),
		embed.FooterTimestamp,
		nullIfEmpty(embed.ThumbnailURL),
		nullIfEmpty(embed.ImageURL),
	).Scan(&embed.ID, &embed.CreatedAt, &embed.UpdatedAt)
	if isUniqueViolation(err) {
		return service.ErrEmbedExists
	}
	if err != nil {
		return fmt.Errorf("failed to create embed %q: %w", embed.Name, err)
	}
	return nil
}

// GetByName returns the embed called name, nil if there is none
func (r *EmbedRepository) GetByName(ctx context.Context, name string) (*models.StoredEmbed, error) {
	query := `SELECT ` + embedColumns + ` FROM embeds WHERE guild_id = $1 AND LOWER(name) = LOWER($2)`

	embed, err := scanEmbed(r.q.QueryRow(ctx, query, r.guildID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embed %q: %w", name, err)
	}
	return embed, nil
}

// Update writes every field of embed back by ID
func (r *EmbedRepository) Update(ctx context.Context, embed *models.StoredEmbed) error {
	query := `
		UPDATE embeds SET
			title = $3, description = $4, color = $5,
			author_name = $6, author_icon_url = $7,
			footer_text = $8, footer_icon_url = $9, footer_timestamp = $10,
			thumbnail_url = $11, image_url = $12,
			updated_at = NOW()
		WHERE id = $1 AND guild_id = $2
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		embed.ID,
		r.guildID,
		nullIfEmpty(embed.Title),
		nullIfEmpty(embed.Description),
		embed.Color,
		nullIfEmpty(embed.AuthorName),
		nullIfEmpty(embed.AuthorIconURL),
		nullIfEmpty(embed.FooterText),
		nullIfEmpty(embed.FooterIconURL),
		embed.FooterTimestamp,
		nullIfEmpty(embed.ThumbnailURL),
		nullIfEmpty(embed.ImageURL),
	).Scan(&embed.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return service.ErrEmbedNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update embed %q: %w", embed.Name, err)
	}
	return nil
}

// Delete removes the embed called name and reports whether it existed
func (r *EmbedRepository) Delete(ctx context.Context, name string) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM embeds WHERE guild_id = $1 AND LOWER(name) = LOWER($2)`, r.guildID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete embed %q: %w", name, err)
	}
	return result.RowsAffected() > 0, nil
}

// List returns the guild's embeds sorted by name
func (r *EmbedRepository) List(ctx context.Context) ([]*models.StoredEmbed, error) {
	query := `SELECT ` + embedColumns + ` FROM embeds WHERE guild_id = $1 ORDER BY LOWER(name)`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeds: %w", err)
	}
	defer rows.Close()

	var embeds []*models.StoredEmbed
	for rows.Next() {
		embed, err := scanEmbed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan embed: %w", err)
		}
		embeds = append(embeds, embed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeds: %w", err)
	}
	return embeds, nil
}
