package ping

import (
	"fmt"
	"time"

	"elaina/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles /ping
type Feature struct{}

// NewFeature creates a new ping feature instance
func NewFeature() *Feature {
	return &Feature{}
}

// HandleCommand reports the gateway heartbeat latency
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	content := Message(s.HeartbeatLatency())
	if err := common.RespondWithMessage(s, i, content, false); err != nil {
		log.WithError(err).Error("Failed to respond to ping command")
	}
}

// Message formats a latency reading
func Message(latency time.Duration) string {
	return fmt.Sprintf("🏓 Pong! Gateway latency: **%dms**", latency.Milliseconds())
}

// Command is the /ping definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Check the bot's latency",
	}
}
