// Package embeds implements /embed: named embed templates edited through modals.
package embeds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	listColor = 0xFFCCFF

	// ManagePermissions are required to create, edit or delete embeds
	ManagePermissions = int64(discordgo.PermissionManageGuild | discordgo.PermissionManageChannels)
)

// Feature handles /embed and its editor buttons and modals
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	now        func() time.Time
}

// NewFeature creates a new embeds feature instance
func NewFeature(uowFactory service.UnitOfWorkFactory) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// HandleCommand routes /embed subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	sub, opts := common.Subcommand(i)
	name := common.StringOption(opts, "name", "")

	switch sub {
	case "create", "edit", "delete":
		if !common.MemberHasPermissions(i, ManagePermissions) {
			common.HandleError(s, i, missingPermissions(), false)
			return
		}
	}

	switch sub {
	case "create":
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			embed, err := embeds.Create(ctx, name)
			if err != nil {
				return embedError(err)
			}
			return f.respondEditor(s, i, embed)
		})
	case "edit":
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			embed, err := embeds.Get(ctx, name)
			if err != nil {
				return embedError(err)
			}
			return f.respondEditor(s, i, embed)
		})
	case "show":
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			embed, err := embeds.Get(ctx, name)
			if err != nil {
				return embedError(err)
			}
			rendered := Render(embed, interactionPlaceholders(s, i), f.now())
			return common.RespondWithEmbed(s, i, rendered, nil, false)
		})
	case "delete":
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			if err := embeds.Delete(ctx, name); err != nil {
				return embedError(err)
			}
			return nil
		})
		if err == nil {
			err = common.RespondWithSuccess(s, i, "Embed deleted.", true)
		}
	case "list":
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			list, err := embeds.List(ctx)
			if err != nil {
				return common.NewSystemError(err, "failed to list embeds")
			}
			if len(list) == 0 {
				return common.NewUserError("Create an embed first with `/embed create`.", "no embeds to list")
			}
			return common.RespondWithEmbed(s, i, ListEmbed(guildOf(s, i.GuildID), list), nil, false)
		})
	case "keys":
		err = common.RespondWithEmbed(s, i, KeysEmbed(guildOf(s, i.GuildID)), nil, false)
	default:
		err = common.NewUserError("Unknown embed command.", "unknown embed subcommand "+sub)
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

// HandleAutocomplete suggests stored embed names
func (f *Feature) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		return
	}
	_, current := common.FocusedOption(i)

	var choices []*discordgo.ApplicationCommandOptionChoice
	err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
		list, err := embeds.List(ctx)
		if err != nil {
			return err
		}
		choices = NameChoices(list, current)
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to autocomplete embed names")
	}
	if err := common.RespondWithChoices(s, i, choices); err != nil {
		log.WithError(err).Debug("Failed to send embed autocomplete")
	}
}

// HandleInteraction opens the edit modal for a button and applies submitted modals
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.MemberHasPermissions(i, ManagePermissions) {
		common.HandleError(s, i, missingPermissions(), false)
		return
	}

	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		part, name, ok := ParseButtonID(i.MessageComponentData().CustomID)
		if !ok {
			common.RespondWithError(s, i, "Unknown embed interaction")
			return
		}
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			embed, err := embeds.Get(ctx, name)
			if err != nil {
				return embedError(err)
			}
			return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseModal,
				Data: Modal(part, embed),
			})
		})
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		part, name, ok := ParseModalID(data.CustomID)
		if !ok {
			common.RespondWithError(s, i, "Unknown embed modal")
			return
		}
		var embed *models.StoredEmbed
		err = f.withService(ctx, guildID, func(embeds service.EmbedService) error {
			embed, err = embeds.Get(ctx, name)
			if err != nil {
				return embedError(err)
			}
			Apply(part, embed, common.ModalValues(data))
			if err := embeds.Save(ctx, embed); err != nil {
				return common.NewSystemError(err, "failed to save embed")
			}
			return nil
		})
		if err == nil {
			rendered := Render(embed, interactionPlaceholders(s, i), f.now())
			err = common.UpdateComponentMessage(s, i, rendered, EditorComponents(embed.Name))
		}
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

// IsEmbedInteraction reports whether customID belongs to the embed editor
func IsEmbedInteraction(customID string) bool {
	return strings.HasPrefix(customID, buttonPrefix) || strings.HasPrefix(customID, modalPrefix)
}

// withService runs fn in a transaction that commits when fn succeeds
func (f *Feature) withService(ctx context.Context, guildID int64, fn func(service.EmbedService) error) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := fn(service.NewEmbedService(uow.EmbedRepository(), guildID)); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transaction")
	}
	return nil
}

func (f *Feature) respondEditor(s *discordgo.Session, i *discordgo.InteractionCreate, embed *models.StoredEmbed) error {
	rendered := Render(embed, interactionPlaceholders(s, i), f.now())
	return common.RespondWithEmbed(s, i, rendered, EditorComponents(embed.Name), false)
}

func embedError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmbedExists):
		return common.NewUserError("An embed with that name already exists.", "embed exists")
	case errors.Is(err, service.ErrEmbedNotFound):
		return common.NewUserError("No embed with that name.", "embed not found")
	case errors.Is(err, service.ErrInvalidName):
		return common.NewUserError("Embed names are 1 to 32 characters and may not contain braces.", "invalid embed name")
	default:
		return common.NewSystemError(err, "embed operation failed")
	}
}

func missingPermissions() error {
	return common.NewUserError("You need the Manage Server and Manage Channels permissions.", "missing embed permissions")
}

func interactionPlaceholders(s *discordgo.Session, i *discordgo.InteractionCreate) *Placeholders {
	var member *discordgo.Member
	if i.Member != nil {
		m := *i.Member
		m.GuildID = i.GuildID
		member = &m
	}
	return NewPlaceholders(member, guildOf(s, i.GuildID))
}

// guildOf returns the cached guild, or a stub carrying only the ID
func guildOf(s *discordgo.Session, guildID string) *discordgo.Guild {
	if guild, err := s.State.Guild(guildID); err == nil {
		return guild
	}
	return &discordgo.Guild{ID: guildID}
}

// NameChoices filters embed names containing current, case-insensitively
func NameChoices(list []*models.StoredEmbed, current string) []*discordgo.ApplicationCommandOptionChoice {
	current = strings.ToLower(current)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(list))
	for _, e := range list {
		if strings.Contains(strings.ToLower(e.Name), current) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: e.Name, Value: e.Name})
		}
		if len(choices) == common.MaxAutocomplete {
			break
		}
	}
	return choices
}

// ListEmbed lists a guild's embed names
func ListEmbed(guild *discordgo.Guild, list []*models.StoredEmbed) *discordgo.MessageEmbed {
	names := make([]string, len(list))
	for n, e := range list {
		names[n] = e.Name
	}
	return &discordgo.MessageEmbed{
		Title:       "Embed List",
		Description: common.Truncate(strings.Join(names, "\n"), 4096),
		Color:       listColor,
		Author:      guildAuthor(guild),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d embeds in total", len(list))},
	}
}

// KeysEmbed documents the placeholders
func KeysEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	lines := make([]string, len(PlaceholderKeys))
	for n, k := range PlaceholderKeys {
		lines[n] = fmt.Sprintf("**%s** - **%s**", k.Key, k.Description)
	}
	lines = append(lines, "**{embed:name}** - **Attach a stored embed (greetings only)**")
	return &discordgo.MessageEmbed{
		Title:       "Embed placeholders",
		Description: strings.Join(lines, "\n"),
		Color:       listColor,
		Author:      guildAuthor(guild),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d keys in total", len(PlaceholderKeys))},
	}
}

func guildAuthor(guild *discordgo.Guild) *discordgo.MessageEmbedAuthor {
	author := &discordgo.MessageEmbedAuthor{Name: guild.Name}
	if guild.Icon != "" {
		author.IconURL = guild.IconURL("")
	}
	return author
}

// Command is the /embed definition
func Command() *discordgo.ApplicationCommand {
	perms := ManagePermissions
	nameOption := func(autocomplete bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "name",
			Description:  "Embed name",
			Required:     true,
			Autocomplete: autocomplete,
			MaxLength:    32,
		}
	}
	sub := func(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     opts,
		}
	}

	return &discordgo.ApplicationCommand{
		Name:                     "embed",
		Description:              "Manage stored embeds",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			sub("create", "Create a new embed", nameOption(false)),
			sub("edit", "Edit an embed", nameOption(true)),
			sub("show", "Preview an embed", nameOption(true)),
			sub("delete", "Delete an embed", nameOption(true)),
			sub("list", "List this server's embeds"),
			sub("keys", "List the placeholders embeds may use"),
		},
	}
}
