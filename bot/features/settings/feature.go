package settings

import (
	"elaina/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	guildSettingsService service.GuildSettingsService
}

// NewFeature creates a new settings feature instance
func NewFeature(guildSettingsService service.GuildSettingsService) *Feature {
	return &Feature{
		guildSettingsService: guildSettingsService,
	}
}

// HandleCommand routes settings commands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "log-channel":
		f.handleLogChannel(s, i)
	}
}

// Command is the /settings definition
func Command() *discordgo.ApplicationCommand {
	perms := int64(discordgo.PermissionManageGuild)
	return &discordgo.ApplicationCommand{
		Name:                     "settings",
		Description:              "Configure the bot for this server",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "log-channel",
				Description: "Set the channel game logs and lottery results are posted to",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Log channel (leave empty to disable)",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
		},
	}
}
