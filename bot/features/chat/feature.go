// Package chat lets moderators post a message as the bot.
package chat

import (
	"errors"
	"strconv"
	"strings"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var errInvalidReplyID = errors.New("reply id is not a message id")

// Feature handles /chat
type Feature struct{}

// NewFeature creates a new chat feature instance
func NewFeature() *Feature {
	return &Feature{}
}

// HandleCommand sends the message option to the chosen channel
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.OptionMap(i.ApplicationCommandData().Options)
	content := common.StringOption(opts, "message", "")
	channelOpt, ok := opts["channel"]
	if !ok || strings.TrimSpace(content) == "" {
		common.RespondWithError(s, i, "Both a message and a channel are required.")
		return
	}
	channelID := channelOpt.ChannelValue(nil).ID

	replyID, err := ParseReplyID(common.StringOption(opts, "reply", ""))
	if err != nil {
		common.RespondWithError(s, i, "Invalid message ID, please enter a number.")
		return
	}

	perms, err := s.State.UserChannelPermissions(s.State.User.ID, channelID)
	if err == nil && !common.HasPermissions(perms, discordgo.PermissionViewChannel|discordgo.PermissionSendMessages) {
		common.RespondWithError(s, i, "I **don't have permission** to send messages in that channel.")
		return
	}

	if replyID != "" {
		if _, err := s.ChannelMessage(channelID, replyID); err != nil {
			common.RespondWithError(s, i, "The message ID must belong to that channel.")
			return
		}
	}

	if _, err := s.ChannelMessageSendComplex(channelID, BuildMessage(content, channelID, replyID)); err != nil {
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"user_id":    common.InteractionUserID(i),
		}).WithError(err).Warn("Failed to relay chat message")
		common.RespondWithError(s, i, "I couldn't send the message to that channel.")
		return
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"user_id":    common.InteractionUserID(i),
	}).Info("Relayed chat message")
	if err := common.RespondWithSuccess(s, i, "Message sent!", true); err != nil {
		log.WithError(err).Error("Failed to confirm chat message")
	}
}

// ParseReplyID validates an optional message id. Empty input means no reply.
func ParseReplyID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
		return "", errInvalidReplyID
	}
	return raw, nil
}

// BuildMessage is the message posted to channelID, replying to replyID when set.
// Only user mentions ping; role and @everyone mentions stay inert.
func BuildMessage(content, channelID, replyID string) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
	if replyID != "" {
		msg.Reference = &discordgo.MessageReference{MessageID: replyID, ChannelID: channelID}
	}
	return msg
}

// Command is the /chat definition
func Command() *discordgo.ApplicationCommand {
	perms := int64(discordgo.PermissionManageMessages)
	return &discordgo.ApplicationCommand{
		Name:                     "chat",
		Description:              "Send a message to a channel as the bot",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message content",
				Required:    true,
				MaxLength:   2000,
			},
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Channel to send the message to",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reply",
				Description: "ID of a message in that channel to reply to",
			},
		},
	}
}
