package info

import (
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
)

const (
	avatarPrefix = "avatar_show_"
	bannerPrefix = "avatar_banner_"

	imageSize = "1024"
	aboutText = "I'm Elaina a.k.a. The Ashen Witch, born on October 17th, from Robetta."
)

const colorAbout = 0xFFB0F7

// IsAvatarInteraction reports whether customID belongs to the /avatar buttons
func IsAvatarInteraction(customID string) bool {
	return strings.HasPrefix(customID, avatarPrefix) || strings.HasPrefix(customID, bannerPrefix)
}

// ParseAvatarID returns the user shown and whether the banner was asked for
func ParseAvatarID(customID string) (userID string, banner bool, ok bool) {
	if id, found := strings.CutPrefix(customID, bannerPrefix); found && id != "" {
		return id, true, true
	}
	if id, found := strings.CutPrefix(customID, avatarPrefix); found && id != "" {
		return id, false, true
	}
	return "", false, false
}

// AvatarComponents switch the /avatar embed between avatar and banner
func AvatarComponents(userID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Avatar", Style: discordgo.SuccessButton, CustomID: avatarPrefix + userID},
			discordgo.Button{Label: "Banner", Style: discordgo.PrimaryButton, CustomID: bannerPrefix + userID},
		}},
	}
}

// AvatarEmbed shows user's avatar, or the banner when banner is set and the user has one
func AvatarEmbed(user *discordgo.User, banner bool) *discordgo.MessageEmbed {
	avatar := user.AvatarURL(imageSize)
	embed := &discordgo.MessageEmbed{
		Title: "Avatar of " + user.Username,
		Color: common.ColorSuccess,
		Image: &discordgo.MessageEmbedImage{URL: avatar},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Avatar Link", Value: fmt.Sprintf("[Click here](%s)", avatar)},
		},
	}

	if user.Banner == "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Banner", Value: "No banner"})
		return embed
	}
	bannerURL := user.BannerURL(imageSize)
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Banner Link",
		Value: fmt.Sprintf("[Click here](%s)", bannerURL),
	})
	if banner {
		embed.Title = "Banner of " + user.Username
		embed.Image.URL = bannerURL
	}
	return embed
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func createdAt(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return "Unknown"
	}
	return common.FormatDiscordTimestamp(t, "F")
}

// UserInfoEmbed describes member. boosts is the guild's boost count.
func UserInfoEmbed(member *discordgo.Member, boosts int) *discordgo.MessageEmbed {
	user := member.User
	avatar := user.AvatarURL("")

	joined := "Unknown"
	if !member.JoinedAt.IsZero() {
		joined = common.FormatDiscordTimestamp(member.JoinedAt, "F")
	}

	roles := "No roles"
	if len(member.Roles) > 0 {
		mentions := make([]string, len(member.Roles))
		for n, roleID := range member.Roles {
			mentions[n] = "<@&" + roleID + ">"
		}
		roles = common.Truncate(strings.Join(mentions, ", "), 1024)
	}

	return &discordgo.MessageEmbed{
		Title:     "User info",
		Color:     common.ColorSuccess,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: avatar},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Username", Value: user.Username},
			{Name: "Created", Value: createdAt(user.ID)},
			{Name: "Joined", Value: joined},
			{Name: "Server boosts", Value: fmt.Sprintf("%d", boosts)},
			{Name: "Roles", Value: roles},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: common.MemberDisplayName(member), IconURL: avatar},
	}
}

// GuildSummary counts what a guild holds
type GuildSummary struct {
	Members  int
	Bots     int
	Channels int
	Text     int
	Voice    int
}

// Humans is the member count without bots
func (g GuildSummary) Humans() int {
	return max(g.Members-g.Bots, 0)
}

// Summarize counts members and channels from whatever the guild object carries
func Summarize(guild *discordgo.Guild) GuildSummary {
	summary := GuildSummary{
		Members: max(guild.MemberCount, guild.ApproximateMemberCount, len(guild.Members)),
	}
	for _, m := range guild.Members {
		if m.User != nil && m.User.Bot {
			summary.Bots++
		}
	}
	for _, ch := range guild.Channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildCategory:
			continue
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews, discordgo.ChannelTypeGuildForum:
			summary.Text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			summary.Voice++
		}
		summary.Channels++
	}
	return summary
}

var verificationNames = map[discordgo.VerificationLevel]string{
	discordgo.VerificationLevelNone:     "None",
	discordgo.VerificationLevelLow:      "Low",
	discordgo.VerificationLevelMedium:   "Medium",
	discordgo.VerificationLevelHigh:     "High",
	discordgo.VerificationLevelVeryHigh: "Highest",
}

// ServerInfoEmbed describes guild
func ServerInfoEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	summary := Summarize(guild)
	embed := &discordgo.MessageEmbed{
		Title: "Server info: " + guild.Name,
		Color: common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: "<@" + guild.OwnerID + ">"},
			{Name: "Created", Value: createdAt(guild.ID)},
			{Name: "Boosts", Value: fmt.Sprintf("Level %d, %d boosts", guild.PremiumTier, guild.PremiumSubscriptionCount)},
			{Name: "Locale", Value: orUnknown(guild.PreferredLocale)},
			{Name: "Members", Value: fmt.Sprintf("%d", summary.Humans()), Inline: true},
			{Name: "Bots", Value: fmt.Sprintf("%d", summary.Bots), Inline: true},
			{Name: "Channels", Value: fmt.Sprintf("%d", summary.Channels), Inline: true},
			{Name: "Text channels", Value: fmt.Sprintf("%d", summary.Text), Inline: true},
			{Name: "Voice channels", Value: fmt.Sprintf("%d", summary.Voice), Inline: true},
			{Name: "Verification", Value: verificationNames[guild.VerificationLevel]},
		},
	}
	if guild.Icon != "" {
		icon := guild.IconURL("")
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Server info", IconURL: icon}
	}
	return embed
}

// AboutEmbed describes the bot across every guild it is in. usage is nil when host
// load could not be read.
func AboutEmbed(guilds []*discordgo.Guild, usage *Usage, now time.Time) *discordgo.MessageEmbed {
	var total GuildSummary
	for _, g := range guilds {
		s := Summarize(g)
		total.Members += s.Members
		total.Channels += s.Channels
		total.Text += s.Text
		total.Voice += s.Voice
	}

	cpuValue, ramValue := "n/a", "n/a"
	if usage != nil {
		cpuValue = fmt.Sprintf("%.1f%%", usage.CPUPercent)
		ramValue = fmt.Sprintf("%.1f%%", usage.RAMPercent)
	}

	return &discordgo.MessageEmbed{
		Title:       "About Me",
		Description: aboutText,
		Color:       colorAbout,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏠 Total servers", Value: fmt.Sprintf("%d", len(guilds)), Inline: true},
			{Name: "👥 Total members", Value: fmt.Sprintf("%d", total.Members), Inline: true},
			{Name: "💬 Total channels", Value: fmt.Sprintf("%d", total.Channels), Inline: true},
			{Name: "💬 Text & Voice channels", Value: fmt.Sprintf("Text: %d, Voice: %d", total.Text, total.Voice), Inline: true},
			{Name: "💻 CPU usage", Value: cpuValue, Inline: true},
			{Name: "💾 RAM usage", Value: ramValue, Inline: true},
		},
		Timestamp: now.Format(time.RFC3339),
	}
}
