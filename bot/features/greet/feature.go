// Package greet posts a configurable welcome message when members join.
package greet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"elaina/bot/common"
	"elaina/bot/features/embeds"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const maxMessageLength = 2000

// Feature handles /greet and the member join greeting
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	settings   service.GuildSettingsService
	now        func() time.Time
}

// NewFeature creates a new greet feature instance
func NewFeature(uowFactory service.UnitOfWorkFactory, settings service.GuildSettingsService) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		settings:   settings,
		now:        time.Now,
	}
}

// HandleCommand routes /greet subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.MemberHasPermissions(i, embeds.ManagePermissions) {
		common.RespondWithError(s, i, "You need the Manage Server and Manage Channels permissions.")
		return
	}

	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, opts := common.Subcommand(i)
	switch sub {
	case "message":
		err = f.settings.UpdateGreetMessage(ctx, guildID, common.StringOption(opts, "text", ""))
		if err == nil {
			err = common.RespondWithSuccess(s, i, "Greeting message updated.", true)
		}
	case "channel":
		channelID, parseErr := strconv.ParseInt(common.StringOption(opts, "channel", ""), 10, 64)
		if parseErr != nil {
			err = common.NewUserError("Invalid channel selected.", "invalid greet channel")
			break
		}
		err = f.settings.UpdateGreetChannel(ctx, guildID, channelID)
		if err == nil {
			err = common.RespondWithSuccess(s, i, fmt.Sprintf("Greetings will be posted in <#%d>.", channelID), true)
		}
	case "clear":
		err = f.settings.ClearGreeting(ctx, guildID)
		if err == nil {
			err = common.RespondWithSuccess(s, i, "Greeting cleared.", true)
		}
	case "test":
		err = f.handleTest(ctx, s, i, guildID)
	default:
		err = common.NewUserError("Unknown greet command.", "unknown greet subcommand "+sub)
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handleTest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) error {
	settings, err := f.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		return err
	}
	if settings.GreetMessage == nil || *settings.GreetMessage == "" {
		return common.NewUserError("Set a greeting first with `/greet message`.", "no greeting configured")
	}

	member := *i.Member
	member.GuildID = i.GuildID
	msg, err := f.build(ctx, guildID, *settings.GreetMessage, &member, guildOrStub(s, i.GuildID))
	if err != nil {
		return err
	}
	if msg == nil {
		return common.NewUserError("The greeting renders as an empty message.", "empty greeting")
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Embeds:          msg.Embeds,
			AllowedMentions: msg.AllowedMentions,
		},
	})
}

// HandleMemberAdd greets a member who just joined
func (f *Feature) HandleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := log.WithFields(log.Fields{"guild_id": m.GuildID, "user_id": m.User.ID})

	settings, err := f.settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		logger.WithError(err).Error("Failed to load greet settings")
		return
	}
	if !settings.HasGreeting() {
		return
	}

	msg, err := f.build(ctx, guildID, *settings.GreetMessage, m.Member, guildOrStub(s, m.GuildID))
	if err != nil {
		logger.WithError(err).Error("Failed to build greeting")
		return
	}
	if msg == nil {
		return
	}

	if _, err := s.ChannelMessageSendComplex(strconv.FormatInt(*settings.GreetChannelID, 10), msg); err != nil {
		logger.WithError(err).Warn("Failed to send greeting")
	}
}

func (f *Feature) build(ctx context.Context, guildID int64, template string, member *discordgo.Member, guild *discordgo.Guild) (*discordgo.MessageSend, error) {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stored, err := service.NewEmbedService(uow.EmbedRepository(), guildID).Referenced(ctx, template)
	if err != nil {
		return nil, err
	}
	return Message(template, stored, embeds.NewPlaceholders(member, guild), f.now()), nil
}

// Message renders a greeting template. It returns nil when nothing would be sent.
func Message(template string, stored []*models.StoredEmbed, p *embeds.Placeholders, now time.Time) *discordgo.MessageSend {
	content := common.Truncate(p.Replace(service.StripEmbedReferences(template)), maxMessageLength)
	rendered := embeds.RenderAll(stored, p, now)
	if content == "" && len(rendered) == 0 {
		return nil
	}
	return &discordgo.MessageSend{
		Content: content,
		Embeds:  rendered,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
}

func guildOrStub(s *discordgo.Session, guildID string) *discordgo.Guild {
	if guild, err := s.State.Guild(guildID); err == nil {
		return guild
	}
	return &discordgo.Guild{ID: guildID}
}

// Command is the /greet definition
func Command() *discordgo.ApplicationCommand {
	perms := embeds.ManagePermissions
	return &discordgo.ApplicationCommand{
		Name:                     "greet",
		Description:              "Configure the welcome message for new members",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "message",
				Description: "Set the greeting; placeholders and {embed:name} are supported",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "text",
						Description: "Greeting text",
						Required:    true,
						MaxLength:   maxMessageLength,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "channel",
				Description: "Set the channel greetings are posted in",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Greeting channel",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test",
				Description: "Preview the greeting as if you just joined",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "clear",
				Description: "Disable the greeting",
			},
		},
	}
}
