// Package afk lets members mark themselves away and tells others who mention them.
package afk

import (
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	defaultReason   = "AFK"
	maxReasonLength = 200
)

// Feature handles /afk and the message listener that clears and reports AFK status
type Feature struct {
	registry *Registry
	now      func() time.Time
}

// NewFeature creates a new afk feature instance
func NewFeature(registry *Registry) *Feature {
	return &Feature{
		registry: registry,
		now:      time.Now,
	}
}

// HandleCommand marks the invoker AFK
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, opts := common.Subcommand(i)
	reason := strings.TrimSpace(common.StringOption(opts, "reason", ""))
	if reason == "" {
		reason = defaultReason
	}

	f.registry.Set(i.GuildID, common.InteractionUserID(i), reason, f.now())

	content := fmt.Sprintf("%s is now AFK: %s", common.InteractionDisplayName(i), reason)
	if err := common.RespondWithMessage(s, i, content, false); err != nil {
		log.WithError(err).Error("Failed to respond to afk command")
	}
}

// HandleMessage welcomes back AFK authors and answers mentions of AFK members
func (f *Feature) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	now := f.now()

	if entry, ok := f.registry.Clear(m.GuildID, m.Author.ID); ok {
		f.reply(s, m, WelcomeBack(m.Author.Mention(), entry, now))
	}

	seen := make(map[string]bool, len(m.Mentions))
	for _, u := range m.Mentions {
		if u.ID == m.Author.ID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		if entry, ok := f.registry.Mention(m.GuildID, u.ID); ok {
			name := common.GetDisplayName(s, m.GuildID, u.ID)
			f.reply(s, m, MentionNotice(name, entry))
		}
	}
}

func (f *Feature) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.WithError(err).WithField("channel_id", m.ChannelID).Warn("Failed to send afk reply")
	}
}

// WelcomeBack is the reply when an AFK member speaks again
func WelcomeBack(mention string, e Entry, now time.Time) string {
	msg := fmt.Sprintf("Welcome back %s! You were AFK for %s", mention, common.FormatDuration(now.Sub(e.Since)))
	switch e.Mentions {
	case 0:
		return msg + "."
	case 1:
		return msg + " and were mentioned 1 time."
	default:
		return msg + fmt.Sprintf(" and were mentioned %d times.", e.Mentions)
	}
}

// MentionNotice is the reply when someone mentions an AFK member
func MentionNotice(name string, e Entry) string {
	return fmt.Sprintf("%s is AFK: %s (%s)", name, e.Reason, common.FormatDiscordTimestamp(e.Since, "R"))
}

// Command is the /afk definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "afk",
		Description: "Mark yourself as away",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why you are away",
				MaxLength:   maxReasonLength,
			},
		},
	}
}
