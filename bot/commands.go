package bot

import (
	"fmt"

	"elaina/bot/features/afk"
	"elaina/bot/features/balance"
	"elaina/bot/features/baucua"
	"elaina/bot/features/blackjack"
	"elaina/bot/features/chat"
	"elaina/bot/features/coinflip"
	"elaina/bot/features/embeds"
	"elaina/bot/features/greet"
	"elaina/bot/features/info"
	"elaina/bot/features/lottery"
	"elaina/bot/features/moderation"
	"elaina/bot/features/ping"
	"elaina/bot/features/settings"
	"elaina/bot/features/stats"
	"elaina/bot/features/taixiu"
	"elaina/bot/features/weather"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// commandDefinitions collects every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	commands := balance.Commands()
	commands = append(commands,
		blackjack.Command(),
		baucua.Command(),
		coinflip.Command(),
		taixiu.Command(),
		lottery.Command(),
		moderation.Command(),
		embeds.Command(),
		greet.Command(),
		weather.Command(),
		afk.Command(),
		ping.Command(),
		chat.Command(),
		settings.Command(),
	)
	commands = append(commands, stats.Commands()...)
	commands = append(commands, info.Commands()...)
	return commands
}

// registerCommands replaces the registered commands with commandDefinitions
func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, commands)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = "guild " + b.config.GuildID
	}
	log.WithFields(log.Fields{
		"count": len(registered),
		"scope": scope,
	}).Info("Registered slash commands")
	return nil
}
