// Package gamelog posts a compact embed for every settled game to the guild's log channel.
package gamelog

import (
	"context"
	"fmt"
	"time"

	"elaina/bot/common"
	"elaina/events"
	"elaina/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var gameTitles = map[models.GameType]string{
	models.GameTypeBlackjack: "Blackjack",
	models.GameTypeCoinflip:  "Coinflip",
	models.GameTypeTaiXiu:    "Tài Xỉu",
	models.GameTypeBauCua:    "Bầu Cua",
}

// Logger forwards settled games to log channels
type Logger struct {
	session  *discordgo.Session
	channels *common.LogChannels
	now      func() time.Time
}

// NewLogger creates a game logger
func NewLogger(session *discordgo.Session, channels *common.LogChannels) *Logger {
	return &Logger{
		session:  session,
		channels: channels,
		now:      time.Now,
	}
}

// SubscribeTo logs every GameSettledEvent committed on bus
func (l *Logger) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGameSettled, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GameSettledEvent); ok {
			l.handle(ctx, e)
		}
	})
}

func (l *Logger) handle(ctx context.Context, e events.GameSettledEvent) {
	// the emitting request may already be done
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	channelID := l.channels.For(ctx, e.GuildID)
	if channelID == "" {
		return
	}

	if _, err := l.session.ChannelMessageSendEmbed(channelID, Embed(e, l.now())); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id":   e.GuildID,
			"channel_id": channelID,
			"round_id":   e.RoundID,
		}).Warn("Failed to post game log")
	}
}

// Embed summarises one settled game
func Embed(e events.GameSettledEvent, now time.Time) *discordgo.MessageEmbed {
	title, ok := gameTitles[e.Game]
	if !ok {
		title = string(e.Game)
	}

	net := e.Payout - e.Wager
	color := common.ColorInfo
	switch {
	case net > 0:
		color = common.ColorSuccess
	case net < 0:
		color = common.ColorDanger
	}

	description := fmt.Sprintf("%s bet %s, result **%s** (%s)",
		common.GetUserMention(e.UserID), common.FormatCoins(e.Wager), e.Outcome, common.FormatSigned(net))
	if e.Summary != "" {
		description += "\n" + e.Summary
	}
	if e.ChannelID != 0 {
		description += fmt.Sprintf("\nin <#%d>", e.ChannelID)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Round #%d", e.RoundID)},
		Timestamp:   now.Format(time.RFC3339),
	}
}
