package stats

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleLeaderboard renders the top balances as an image
func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer leaderboard response")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	entries, err := f.statsService.GetScoreboard(ctx, guildID, leaderboardSize)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to get scoreboard"), true)
		return
	}
	if len(entries) == 0 {
		common.FollowUpWithError(s, i, "Nobody has played yet.")
		return
	}

	rows := LeaderboardRows(entries, func(e *models.ScoreboardEntry) string {
		if name := common.GetDisplayNameInt64(s, i.GuildID, e.DiscordID); name != "Unknown" {
			return name
		}
		return e.Username
	})
	png, err := f.image.Render("Leaderboard", rows)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to render leaderboard"), true)
		return
	}

	guildName := ""
	if guild, err := s.State.Guild(i.GuildID); err == nil {
		guildName = guild.Name
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{BuildLeaderboardEmbed(guildName, f.now())},
		Files: []*discordgo.File{{
			Name:        leaderboardFile,
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
	if err != nil {
		log.WithError(err).Error("Failed to send leaderboard")
	}
}

// handleUserStats displays individual user statistics
func (f *Feature) handleUserStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guildID, targetID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	_, opts := common.Subcommand(i)
	if opt, ok := opts["user"]; ok {
		target := opt.UserValue(s)
		if targetID, err = strconv.ParseInt(target.ID, 10, 64); err != nil {
			common.HandleError(s, i, common.NewSystemError(err, "failed to parse target ID"), false)
			return
		}
	}

	userStats, err := f.statsService.GetUserStats(ctx, guildID, targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			common.RespondWithError(s, i, "That player hasn't played yet.")
			return
		}
		common.HandleError(s, i, common.NewSystemError(err, "failed to get user stats"), false)
		return
	}

	displayName := common.GetDisplayNameInt64(s, i.GuildID, targetID)
	embed := BuildUserStatsEmbed(userStats, displayName, f.now())
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithError(err).Error("Failed to respond to stats command")
	}
}
