package stats

import (
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"
	"elaina/models"

	"github.com/bwmarrin/discordgo"
)

const leaderboardFile = "leaderboard.png"

var gameNames = map[models.GameType]string{
	models.GameTypeBlackjack: "🃏 Blackjack",
	models.GameTypeCoinflip:  "🪙 Coinflip",
	models.GameTypeTaiXiu:    "🎲 Tài Xỉu",
	models.GameTypeBauCua:    "🦀 Bầu Cua",
}

// BuildLeaderboardEmbed wraps the rendered leaderboard image
func BuildLeaderboardEmbed(guildName string, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:     "🏆 Richest players",
		Color:     common.ColorGold,
		Image:     &discordgo.MessageEmbedImage{URL: "attachment://" + leaderboardFile},
		Footer:    &discordgo.MessageEmbedFooter{Text: guildName},
		Timestamp: now.Format(time.RFC3339),
	}
}

// LeaderboardRows turns scoreboard entries into image rows, naming users with name
func LeaderboardRows(entries []*models.ScoreboardEntry, name func(*models.ScoreboardEntry) string) []LeaderboardRow {
	rows := make([]LeaderboardRow, len(entries))
	for n, entry := range entries {
		rows[n] = LeaderboardRow{
			Rank:    entry.Rank,
			Name:    common.Truncate(name(entry), 22),
			Balance: common.FormatBalanceCompact(entry.Balance),
		}
	}
	return rows
}

// BuildUserStatsEmbed creates the user statistics embed
func BuildUserStatsEmbed(userStats *models.UserStats, targetName string, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("📊 Stats for %s", targetName),
		Color:     common.ColorPrimary,
		Timestamp: now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Balance", Value: common.FormatCoins(userStats.User.Balance), Inline: true},
			{Name: "📈 Net profit", Value: common.FormatSigned(userStats.NetProfit), Inline: true},
			{Name: "🎯 Win rate", Value: fmt.Sprintf("%.1f%%", userStats.WinPercentage), Inline: true},
		},
	}

	for _, g := range userStats.Games {
		name, ok := gameNames[g.Game]
		if !ok {
			name = string(g.Game)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("%d/%d won (%.1f%%)\nWagered %s",
				g.RoundsWon, g.RoundsTotal, g.WinPercentage(), common.FormatBalance(g.TotalWager)),
			Inline: true,
		})
	}

	if len(userStats.RecentHistory) > 0 {
		lines := make([]string, len(userStats.RecentHistory))
		for n, h := range userStats.RecentHistory {
			lines[n] = fmt.Sprintf("`%s` %s %s",
				common.FormatSigned(h.ChangeAmount), historyLabel(h.TransactionType), common.FormatDiscordTimestamp(h.CreatedAt, "R"))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🧾 Recent activity",
			Value: strings.Join(lines, "\n"),
		})
	}

	if userStats.User.Banned {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Banned from gambling"}
	}
	return embed
}

func historyLabel(t models.TransactionType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
