package stats

import (
	"time"

	"elaina/bot/common"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
)

const leaderboardSize = 10

// Feature represents the stats feature
type Feature struct {
	statsService service.StatsService
	image        *LeaderboardImage
	now          func() time.Time
}

// NewFeature creates a new stats feature instance
func NewFeature(statsService service.StatsService) *Feature {
	return &Feature{
		statsService: statsService,
		image:        NewLeaderboardImage(),
		now:          time.Now,
	}
}

// HandleCommand handles /stats and /leaderboard
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "stats":
		f.handleUserStats(s, i)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	default:
		common.RespondWithError(s, i, "Unknown command")
	}
}

// Commands returns the stats command definitions
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "stats",
			Description: "Show game statistics for a player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player to look up (defaults to you)",
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the richest players",
		},
	}
}
