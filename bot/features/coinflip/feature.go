// Package coinflip implements /coinflip.
package coinflip

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	cooldownPeriod = 5 * time.Second
	flipDelay      = 1500 * time.Millisecond
)

// Feature handles /coinflip
type Feature struct {
	players  *common.Players
	cooldown *common.Cooldown
	delay    time.Duration
}

// NewFeature creates a new coinflip feature instance
func NewFeature(players *common.Players) *Feature {
	return &Feature{
		players:  players,
		cooldown: common.NewCooldown(cooldownPeriod),
		delay:    flipDelay,
	}
}

// HandleCommand flips a coin for the invoking user
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	retryAt, ok := f.cooldown.Acquire(userID)
	if !ok {
		common.HandleError(s, i, common.CooldownError(retryAt), false)
		return
	}
	defer f.cooldown.Release(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	pick := common.StringOption(opts, "side", service.CoinHeads)
	wager := common.StringOption(opts, "bet", "")
	user := common.InteractionUser(i)

	if _, err := f.players.EnsurePlayable(ctx, guildID, userID, user.Username); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	channelID, _ := strconv.ParseInt(i.ChannelID, 10, 64)
	result, err := f.players.Play(ctx, guildID, func(games service.GameService) (*models.GameResult, error) {
		return games.Coinflip(ctx, &service.CoinflipRequest{
			DiscordID: userID,
			GuildID:   guildID,
			ChannelID: channelID,
			Pick:      pick,
			WagerSpec: wager,
		})
	})
	if err != nil {
		common.HandleError(s, i, common.GameError(err), false)
		return
	}

	if err := common.RespondWithMessage(s, i, "🪙 Flipping the coin...", false); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to send coinflip response")
		return
	}

	time.Sleep(f.delay)

	content := ResultMessage(result)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to show coinflip result")
	}
}

// ResultMessage renders a settled flip
func ResultMessage(result *models.GameResult) string {
	side, _ := result.Round.Details["side"].(string)
	if result.Won {
		return fmt.Sprintf("The coin landed on **%s**!\nYou won __**%s**__ %s! Balance: %s",
			side, common.FormatBalance(result.Round.Wager), common.Currency, common.FormatCoins(result.NewBalance))
	}
	return fmt.Sprintf("Sorry, the coin landed on **%s**.\nYou lost __**%s**__ %s. Balance: %s",
		side, common.FormatBalance(result.Round.Wager), common.Currency, common.FormatCoins(result.NewBalance))
}

// Command is the /coinflip definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "coinflip",
		Description: "Bet on a coin flip",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "side",
				Description: "Heads or tails",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Heads", Value: service.CoinHeads},
					{Name: "Tails", Value: service.CoinTails},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "bet",
				Description: "Amount to bet, or \"all\"",
				Required:    true,
			},
		},
	}
}
