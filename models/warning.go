package models

import "time"

// Warning is a moderator-issued warning for a guild member
type Warning struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	DiscordID   int64     `db:"discord_id"`
	ModeratorID int64     `db:"moderator_id"`
	Reason      string    `db:"reason"`
	CreatedAt   time.Time `db:"created_at"`
}
