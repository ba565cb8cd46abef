package moderation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
)

// requirement is what an action asks of the invoker and the bot
type requirement struct {
	permission int64
	name       string
}

var requirements = map[string]requirement{
	service.ActionWarn:      {discordgo.PermissionModerateMembers, "Timeout Members"},
	service.ActionTimeout:   {discordgo.PermissionModerateMembers, "Timeout Members"},
	service.ActionUntimeout: {discordgo.PermissionModerateMembers, "Timeout Members"},
	service.ActionKick:      {discordgo.PermissionKickMembers, "Kick Members"},
	service.ActionBan:       {discordgo.PermissionBanMembers, "Ban Members"},
	service.ActionUnban:     {discordgo.PermissionBanMembers, "Ban Members"},
}

var pastTense = map[string]string{
	service.ActionWarn:      "warned",
	service.ActionTimeout:   "timed out",
	service.ActionUntimeout: "released from timeout",
	service.ActionKick:      "kicked",
	service.ActionBan:       "banned",
	service.ActionUnban:     "unbanned",
}

// CheckError turns a failed moderation check into the reply for action
func CheckError(action string, err error) *common.BotError {
	perm := requirements[action].name
	var msg string
	switch {
	case errors.Is(err, service.ErrMissingPermission):
		msg = fmt.Sprintf("You need the **%s** permission to use this command.", perm)
	case errors.Is(err, service.ErrBotMissingPermission):
		msg = fmt.Sprintf("Please grant me the **%s** permission first.", perm)
	case errors.Is(err, service.ErrTargetIsSelf):
		msg = "You can't use this on yourself."
	case errors.Is(err, service.ErrTargetIsOwner):
		msg = "You can't use this on the server owner."
	case errors.Is(err, service.ErrTargetIsBot):
		msg = "You can't use this on me."
	case errors.Is(err, service.ErrInvokerRoleTooLow):
		msg = "**Your top role must be above the target's.**"
	case errors.Is(err, service.ErrBotRoleTooLow):
		msg = "Check my role in the server settings. **My top role must be above the target's.**"
	case errors.Is(err, service.ErrInvalidDuration):
		msg = "Invalid duration. Examples: 30s, 5m, 1h, 1d, 1w."
	case errors.Is(err, service.ErrDurationTooLong):
		msg = "The maximum duration is **1 week**."
	default:
		return common.NewSystemError(err, "moderation check failed")
	}
	return common.NewUserError(msg, "moderation refused: "+err.Error())
}

// NoticeEmbed is the DM a member receives about an action taken on them
func NoticeEmbed(action string, guild *discordgo.Guild, moderatorName, reason string, now time.Time, until *time.Time) *discordgo.MessageEmbed {
	var b strings.Builder
	fmt.Fprintf(&b, "- You were %s in %s.\n", pastTense[action], guild.Name)
	fmt.Fprintf(&b, "- Reason: %s.\n", reason)
	if until != nil {
		fmt.Fprintf(&b, "- Until: %s.\n", common.FormatDiscordTimestamp(*until, "F"))
	}
	fmt.Fprintf(&b, "- Time: %s.", common.FormatDiscordTimestamp(now, "F"))

	embed := &discordgo.MessageEmbed{
		Description: b.String(),
		Color:       common.ColorDanger,
		Author: &discordgo.MessageEmbedAuthor{
			Name: guild.Name,
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Action taken by " + moderatorName,
		},
	}
	if guild.Icon != "" {
		embed.Author.IconURL = guild.IconURL("")
	}
	return embed
}

// Confirmation is the public reply after a successful action
func Confirmation(action, targetName, reason string, duration time.Duration) string {
	switch action {
	case service.ActionTimeout:
		return fmt.Sprintf("**%s** was timed out for **%s**. Reason: `%s`", targetName, common.FormatDuration(duration), reason)
	case service.ActionBan:
		if duration > 0 {
			return fmt.Sprintf("**%s** was banned and their messages from the last %d day(s) deleted. Reason: `%s`",
				targetName, service.BanDeleteDays(duration), reason)
		}
		return fmt.Sprintf("**%s** was banned. Reason: `%s`", targetName, reason)
	default:
		return fmt.Sprintf("**%s** was %s. Reason: `%s`", targetName, pastTense[action], reason)
	}
}

// WarningsEmbed lists a member's warnings
func WarningsEmbed(targetName string, warnings []*models.Warning) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Warnings for " + targetName,
		Color: common.ColorWarning,
	}
	if len(warnings) == 0 {
		embed.Description = "No warnings on record."
		return embed
	}

	var b strings.Builder
	for n, w := range warnings {
		fmt.Fprintf(&b, "**%d.** %s by %s %s\n", n+1, w.Reason, common.GetUserMention(w.ModeratorID), common.FormatDiscordTimestamp(w.CreatedAt, "R"))
	}
	embed.Description = common.Truncate(b.String(), 4096)
	return embed
}
