package common

import (
	"context"
	"strconv"

	"elaina/service"

	log "github.com/sirupsen/logrus"
)

// LogChannels resolves where a guild's game logs and lottery results go.
// The guild's own setting wins over the configured fallback.
type LogChannels struct {
	settings service.GuildSettingsService
	fallback string
}

// NewLogChannels creates a resolver. fallback may be empty.
func NewLogChannels(settings service.GuildSettingsService, fallback string) *LogChannels {
	return &LogChannels{settings: settings, fallback: fallback}
}

// For returns the log channel ID of guildID, empty when none is configured
func (l *LogChannels) For(ctx context.Context, guildID int64) string {
	settings, err := l.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.WithField("guild_id", guildID).WithError(err).Warn("Failed to read guild log channel, using fallback")
		return l.fallback
	}
	if settings.LogChannelID != nil {
		return strconv.FormatInt(*settings.LogChannelID, 10)
	}
	return l.fallback
}
