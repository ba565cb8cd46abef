// Package balance implements /balance, /give and the admin /economy command.
package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature represents the balance feature
type Feature struct {
	uowFactory      service.UnitOfWorkFactory
	startingBalance int64
	adminID         int64
}

// NewFeature creates a new balance feature. adminID may run /economy; zero disables it.
func NewFeature(uowFactory service.UnitOfWorkFactory, startingBalance, adminID int64) *Feature {
	return &Feature{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
		adminID:         adminID,
	}
}

// HandleCommand routes /balance, /give and /economy
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch i.ApplicationCommandData().Name {
	case "balance":
		err = f.handleBalance(ctx, s, i)
	case "give":
		err = f.handleGive(ctx, s, i)
	case "economy":
		err = f.handleEconomy(ctx, s, i)
	}
	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		return err
	}

	target := common.InteractionUser(i)
	opts := common.OptionMap(i.ApplicationCommandData().Options)
	if opt, ok := opts["user"]; ok {
		target = opt.UserValue(s)
	}
	if target.Bot {
		return common.NewUserError("Bots don't have a balance.", "balance lookup for bot")
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse target user")
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	userService := f.userService(uow)
	user, err := userService.GetOrCreateUser(ctx, targetID, target.Username)
	if err != nil {
		return common.NewSystemError(err, "failed to get user")
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transaction")
	}

	displayName := common.GetDisplayName(s, i.GuildID, target.ID)
	return common.RespondWithEmbed(s, i, BalanceEmbed(displayName, target.AvatarURL(""), user), nil, false)
}

// BalanceEmbed shows a user's balance and ban flag
func BalanceEmbed(displayName, avatarURL string, user *models.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    displayName,
			IconURL: avatarURL,
		},
		Description: fmt.Sprintf("Balance: **%s**", common.FormatCoins(user.Balance)),
		Color:       common.ColorGold,
	}
	if user.Banned {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Banned from gambling"}
	}
	return embed
}

func (f *Feature) handleGive(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, senderID, err := common.ParseInteractionIDs(i)
	if err != nil {
		return err
	}

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	userOpt, ok := opts["user"]
	amountOpt, ok2 := opts["amount"]
	if !ok || !ok2 {
		return common.NewUserError("Provide both a user and an amount.", "missing give options")
	}
	recipient := userOpt.UserValue(s)
	amount := amountOpt.IntValue()
	if recipient == nil || recipient.Bot {
		return common.NewUserError("You can't give "+common.Currency+" to that user.", "invalid give recipient")
	}
	recipientID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse recipient")
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	userService := f.userService(uow)
	if _, err := userService.GetOrCreateUser(ctx, senderID, common.InteractionUser(i).Username); err != nil {
		return common.NewSystemError(err, "failed to get sender")
	}
	if _, err := userService.GetOrCreateUser(ctx, recipientID, recipient.Username); err != nil {
		return common.NewSystemError(err, "failed to get recipient")
	}

	result, err := userService.Transfer(ctx, senderID, recipientID, amount)
	if err != nil {
		return transferError(err)
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit transfer")
	}

	log.WithFields(log.Fields{
		"from":     senderID,
		"to":       recipientID,
		"amount":   amount,
		"guild_id": guildID,
	}).Info("Transfer completed")

	content := fmt.Sprintf("%s gave **%s** to %s. Your balance: %s",
		common.GetUserMention(senderID), common.FormatCoins(result.Amount),
		common.GetUserMention(recipientID), common.FormatCoins(result.SenderBalance))
	return common.RespondWithMessage(s, i, content, false)
}

func transferError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return common.NewUserError("The amount must be positive.", "invalid transfer amount")
	case errors.Is(err, service.ErrSelfTransfer):
		return common.NewUserError("You can't give "+common.Currency+" to yourself.", "self transfer")
	case errors.Is(err, service.ErrInsufficientBalance):
		return common.NewUserError("You don't have enough "+common.Currency+".", "insufficient balance for transfer")
	default:
		return common.NewSystemError(err, "transfer failed")
	}
}

func (f *Feature) handleEconomy(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildID, invokerID, err := common.ParseInteractionIDs(i)
	if err != nil {
		return err
	}
	if f.adminID == 0 || invokerID != f.adminID {
		return common.NewUserError("Only the bot admin can manage the economy.", "economy command by non-admin")
	}

	sub, opts := common.Subcommand(i)
	userOpt, ok := opts["user"]
	if !ok {
		return common.NewUserError("Choose a user.", "economy command without user")
	}
	target := userOpt.UserValue(s)
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse economy target")
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	userService := f.userService(uow)
	if _, err := userService.GetOrCreateUser(ctx, targetID, target.Username); err != nil {
		return common.NewSystemError(err, "failed to get user")
	}

	var message string
	switch sub {
	case "ban", "unban":
		banned := sub == "ban"
		if _, err := userService.SetBanned(ctx, targetID, banned); err != nil {
			return common.NewSystemError(err, "failed to update ban flag")
		}
		if banned {
			message = common.GetUserMention(targetID) + " is now banned from gambling."
		} else {
			message = common.GetUserMention(targetID) + " may gamble again."
		}
	case "adjust":
		var delta int64
		if opt, ok := opts["amount"]; ok {
			delta = opt.IntValue()
		}
		reason := common.StringOption(opts, "reason", "admin adjustment")
		user, err := userService.AdjustBalance(ctx, targetID, delta, reason)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidAmount):
				return common.NewUserError("The amount can't be zero.", "zero adjustment")
			case errors.Is(err, service.ErrInsufficientBalance):
				return common.NewUserError("That would make the balance negative.", "adjustment below zero")
			default:
				return common.NewSystemError(err, "failed to adjust balance")
			}
		}
		message = fmt.Sprintf("Adjusted %s by %s. New balance: %s",
			common.GetUserMention(targetID), common.FormatSigned(delta), common.FormatCoins(user.Balance))
	default:
		return common.NewUserError("Unknown economy command.", "unknown economy subcommand "+sub)
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit economy change")
	}

	log.WithFields(log.Fields{
		"admin_id":  invokerID,
		"target_id": targetID,
		"action":    sub,
	}).Info("Economy admin action")

	return common.RespondWithMessage(s, i, message, true)
}

func (f *Feature) userService(uow service.UnitOfWork) service.UserService {
	return service.NewUserService(uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), f.startingBalance)
}

// Commands returns the command definitions of this feature
func Commands() []*discordgo.ApplicationCommand {
	userOption := func(required bool, description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: description,
			Required:    required,
		}
	}
	minAmount := 1.0

	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Show your " + common.Currency + " balance",
			Options:     []*discordgo.ApplicationCommandOption{userOption(false, "Whose balance to show")},
		},
		{
			Name:        "give",
			Description: "Give " + common.Currency + " to another user",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(true, "Who receives the "+common.Currency),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "How much to give",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "economy",
			Description: "Bot admin economy tools",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ban",
					Description: "Ban a user from gambling",
					Options:     []*discordgo.ApplicationCommandOption{userOption(true, "User to ban")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unban",
					Description: "Allow a user to gamble again",
					Options:     []*discordgo.ApplicationCommandOption{userOption(true, "User to unban")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "adjust",
					Description: "Add to or remove from a balance",
					Options: []*discordgo.ApplicationCommandOption{
						userOption(true, "User to adjust"),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Positive to add, negative to remove",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "reason",
							Description: "Why the balance changes",
						},
					},
				},
			},
		},
	}
}
