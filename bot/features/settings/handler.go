package settings

import (
	"context"
	"fmt"
	"strconv"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleLogChannel handles the /settings log-channel command
func (f *Feature) handleLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.MemberHasPermissions(i, discordgo.PermissionManageGuild) {
		common.RespondWithError(s, i, "You need the Manage Server permission to use this command")
		return
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Errorf("Failed to parse guild ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return
	}

	channelID, err := LogChannelOption(i.ApplicationCommandData().Options[0].Options)
	if err != nil {
		log.Errorf("Failed to parse channel ID: %v", err)
		common.RespondWithError(s, i, "Invalid channel selected")
		return
	}

	if err := f.guildSettingsService.UpdateLogChannel(context.Background(), guildID, channelID); err != nil {
		log.Errorf("Failed to update log channel: %v", err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	if err := common.RespondWithSuccess(s, i, LogChannelMessage(channelID), true); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}

// LogChannelOption reads the channel option; nil means the log channel is disabled
func LogChannelOption(options []*discordgo.ApplicationCommandInteractionDataOption) (*int64, error) {
	for _, opt := range options {
		if opt.Name != "channel" {
			continue
		}
		raw, _ := opt.Value.(string)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, nil
}

// LogChannelMessage confirms the new log channel setting
func LogChannelMessage(channelID *int64) string {
	if channelID == nil {
		return "Log channel disabled"
	}
	return fmt.Sprintf("Log channel updated to <#%d>", *channelID)
}
