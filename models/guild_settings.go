package models

import "time"

// GuildSettings represents per-guild configuration
type GuildSettings struct {
	GuildID        int64     `db:"guild_id"`
	GreetChannelID *int64    `db:"greet_channel_id"`
	GreetMessage   *string   `db:"greet_message"`
	LogChannelID   *int64    `db:"log_channel_id"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// HasGreeting reports whether both a greet channel and message are configured
func (s *GuildSettings) HasGreeting() bool {
	return s.GreetChannelID != nil && s.GreetMessage != nil && *s.GreetMessage != ""
}
