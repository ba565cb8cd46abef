// Package info answers the /userinfo, /serverinfo, /avatar and /about commands.
package info

import (
	"context"
	"time"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const statsTimeout = 5 * time.Second

// Feature handles the informational commands and the avatar buttons
type Feature struct {
	stats SystemStats
}

// NewFeature creates a new info feature instance
func NewFeature(stats SystemStats) *Feature {
	return &Feature{stats: stats}
}

// HandleCommand routes /userinfo, /serverinfo, /avatar and /about
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "userinfo":
		f.handleUserInfo(s, i)
	case "serverinfo":
		f.handleServerInfo(s, i)
	case "avatar":
		f.handleAvatar(s, i)
	case "about":
		f.handleAbout(s, i)
	}
}

// targetUserID is the "member" option, or the invoking user
func targetUserID(i *discordgo.InteractionCreate) string {
	opts := common.OptionMap(i.ApplicationCommandData().Options)
	if opt, ok := opts["member"]; ok {
		if u := opt.UserValue(nil); u != nil && u.ID != "" {
			return u.ID
		}
	}
	return common.InteractionUserID(i)
}

func lookupGuild(s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if g, err := s.State.Guild(guildID); err == nil {
		return g, nil
	}
	return s.GuildWithCounts(guildID)
}

func (f *Feature) handleUserInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := targetUserID(i)
	member, err := s.State.Member(i.GuildID, userID)
	if err != nil || member == nil || member.User == nil {
		member, err = s.GuildMember(i.GuildID, userID)
	}
	if err != nil {
		common.HandleError(s, i, common.NewUserError("That user isn't in this server.", "userinfo member lookup failed"), false)
		return
	}

	boosts := 0
	if guild, err := lookupGuild(s, i.GuildID); err == nil {
		boosts = guild.PremiumSubscriptionCount
	}

	if err := common.RespondWithEmbed(s, i, UserInfoEmbed(member, boosts), nil, false); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to send user info")
	}
}

func (f *Feature) handleServerInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guild, err := lookupGuild(s, i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load guild"), false)
		return
	}
	if err := common.RespondWithEmbed(s, i, ServerInfoEmbed(guild), nil, false); err != nil {
		log.WithField("guild_id", i.GuildID).WithError(err).Error("Failed to send server info")
	}
}

func (f *Feature) handleAvatar(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := targetUserID(i)
	// The banner only comes with a full user fetch
	user, err := s.User(userID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to fetch user"), false)
		return
	}
	if err := common.RespondWithEmbed(s, i, AvatarEmbed(user, false), AvatarComponents(user.ID), false); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to send avatar")
	}
}

// HandleInteraction switches an /avatar message between avatar and banner
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, banner, ok := ParseAvatarID(i.MessageComponentData().CustomID)
	if !ok {
		common.RespondWithError(s, i, "Unknown avatar interaction")
		return
	}

	user, err := s.User(userID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to fetch user"), false)
		return
	}
	if banner && user.Banner == "" {
		common.RespondWithError(s, i, "This user has no banner!")
		return
	}

	if err := common.UpdateComponentMessage(s, i, AvatarEmbed(user, banner), AvatarComponents(user.ID)); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to switch avatar view")
	}
}

func (f *Feature) handleAbout(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Sampling CPU takes a second
	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer about command")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	var usage *Usage
	if f.stats != nil {
		if u, err := f.stats.Usage(ctx); err != nil {
			log.WithError(err).Warn("Failed to read host usage")
		} else {
			usage = &u
		}
	}

	s.State.RLock()
	guilds := append([]*discordgo.Guild(nil), s.State.Guilds...)
	embed := AboutEmbed(guilds, usage, time.Now())
	s.State.RUnlock()

	if _, err := common.FollowUpWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithError(err).Error("Failed to send about")
	}
}

func memberOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "member",
		Description: description,
	}
}

// Commands returns the /userinfo, /serverinfo, /avatar and /about definitions
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "userinfo",
			Description: "Show information about a member",
			Options:     []*discordgo.ApplicationCommandOption{memberOption("Member to look up, yourself by default")},
		},
		{
			Name:        "serverinfo",
			Description: "Show information about this server",
		},
		{
			Name:        "avatar",
			Description: "Show a member's avatar and banner",
			Options:     []*discordgo.ApplicationCommandOption{memberOption("Member whose avatar to show, yourself by default")},
		},
		{
			Name:        "about",
			Description: "Show information about the bot",
		},
	}
}
