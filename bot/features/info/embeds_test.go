package info

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAvatarID(t *testing.T) {
	for _, row := range AvatarComponents("123") {
		for _, comp := range row.(discordgo.ActionsRow).Components {
			id := comp.(discordgo.Button).CustomID
			assert.True(t, IsAvatarInteraction(id))
			userID, _, ok := ParseAvatarID(id)
			require.True(t, ok)
			assert.Equal(t, "123", userID)
		}
	}

	userID, banner, ok := ParseAvatarID("avatar_banner_42")
	assert.True(t, ok)
	assert.True(t, banner)
	assert.Equal(t, "42", userID)

	_, _, ok = ParseAvatarID("avatar_show_")
	assert.False(t, ok)
	assert.False(t, IsAvatarInteraction("bj_draw_1"))
}

func TestAvatarEmbed(t *testing.T) {
	user := &discordgo.User{ID: "80351110224678912", Username: "elaina", Avatar: "abc"}

	embed := AvatarEmbed(user, true)
	assert.Equal(t, "Avatar of elaina", embed.Title)
	assert.Contains(t, embed.Image.URL, "/avatars/80351110224678912/abc")
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "No banner", embed.Fields[1].Value)

	user.Banner = "a_def"
	embed = AvatarEmbed(user, true)
	assert.Equal(t, "Banner of elaina", embed.Title)
	assert.Contains(t, embed.Image.URL, "/banners/80351110224678912/a_def")
	assert.Equal(t, "Banner Link", embed.Fields[1].Name)

	embed = AvatarEmbed(user, false)
	assert.Contains(t, embed.Image.URL, "/avatars/")
}

func TestUserInfoEmbed(t *testing.T) {
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	member := &discordgo.Member{
		User:     &discordgo.User{ID: "80351110224678912", Username: "elaina"},
		Nick:     "Ashen Witch",
		JoinedAt: joined,
		Roles:    []string{"1", "2"},
	}

	embed := UserInfoEmbed(member, 14)

	require.Len(t, embed.Fields, 5)
	assert.Equal(t, "elaina", embed.Fields[0].Value)
	// 80351110224678912 was created on 2015-08-10
	assert.Equal(t, "<t:1439227597:F>", embed.Fields[1].Value)
	assert.Equal(t, "<t:1709294400:F>", embed.Fields[2].Value)
	assert.Equal(t, "14", embed.Fields[3].Value)
	assert.Equal(t, "<@&1>, <@&2>", embed.Fields[4].Value)
	assert.Equal(t, "Ashen Witch", embed.Footer.Text)

	member.Roles = nil
	assert.Equal(t, "No roles", UserInfoEmbed(member, 0).Fields[4].Value)
}

func TestSummarize(t *testing.T) {
	guild := &discordgo.Guild{
		MemberCount: 5,
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "1"}},
			{User: &discordgo.User{ID: "2", Bot: true}},
		},
		Channels: []*discordgo.Channel{
			{Type: discordgo.ChannelTypeGuildCategory},
			{Type: discordgo.ChannelTypeGuildText},
			{Type: discordgo.ChannelTypeGuildNews},
			{Type: discordgo.ChannelTypeGuildVoice},
			{Type: discordgo.ChannelTypeGuildStageVoice},
		},
	}

	summary := Summarize(guild)
	assert.Equal(t, GuildSummary{Members: 5, Bots: 1, Channels: 4, Text: 2, Voice: 2}, summary)
	assert.Equal(t, 4, summary.Humans())
}

func TestServerInfoEmbed(t *testing.T) {
	guild := &discordgo.Guild{
		ID:                       "80351110224678912",
		Name:                     "Robetta",
		OwnerID:                  "7",
		PremiumTier:              discordgo.PremiumTier2,
		PremiumSubscriptionCount: 9,
		VerificationLevel:        discordgo.VerificationLevelHigh,
		MemberCount:              3,
	}

	embed := ServerInfoEmbed(guild)

	assert.Equal(t, "Server info: Robetta", embed.Title)
	assert.Equal(t, "<@7>", embed.Fields[0].Value)
	assert.Equal(t, "Level 2, 9 boosts", embed.Fields[2].Value)
	assert.Equal(t, "Unknown", embed.Fields[3].Value)
	assert.Equal(t, "High", embed.Fields[len(embed.Fields)-1].Value)
	assert.Nil(t, embed.Thumbnail)
}

func TestAboutEmbed(t *testing.T) {
	guilds := []*discordgo.Guild{
		{MemberCount: 10, Channels: []*discordgo.Channel{{Type: discordgo.ChannelTypeGuildText}}},
		{MemberCount: 4, Channels: []*discordgo.Channel{{Type: discordgo.ChannelTypeGuildVoice}}},
	}

	embed := AboutEmbed(guilds, &Usage{CPUPercent: 12.34, RAMPercent: 56.7}, time.Now())
	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "2", embed.Fields[0].Value)
	assert.Equal(t, "14", embed.Fields[1].Value)
	assert.Equal(t, "Text: 1, Voice: 1", embed.Fields[3].Value)
	assert.Equal(t, "12.3%", embed.Fields[4].Value)
	assert.Equal(t, "56.7%", embed.Fields[5].Value)

	embed = AboutEmbed(nil, nil, time.Now())
	assert.Equal(t, "n/a", embed.Fields[4].Value)
}

func TestHostStats(t *testing.T) {
	usage, err := hostStats{sample: 50 * time.Millisecond}.Usage(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, usage.RAMPercent, 0.0)
	assert.LessOrEqual(t, usage.RAMPercent, 100.0)
}

func TestCommands(t *testing.T) {
	names := make([]string, 0, 4)
	for _, cmd := range Commands() {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"userinfo", "serverinfo", "avatar", "about"}, names)
}
