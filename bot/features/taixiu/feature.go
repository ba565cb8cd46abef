// Package taixiu implements /taixiu, the three-dice high/low game.
package taixiu

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	cooldownPeriod = 5 * time.Second
	rollDelay      = 2 * time.Second
	revealDelay    = 500 * time.Millisecond

	rollingDie = "🎲"
)

var dieFaces = map[int]string{1: "⚀", 2: "⚁", 3: "⚂", 4: "⚃", 5: "⚄", 6: "⚅"}

// Feature handles /taixiu
type Feature struct {
	players  *common.Players
	cooldown *common.Cooldown
}

// NewFeature creates a new tai xiu feature instance
func NewFeature(players *common.Players) *Feature {
	return &Feature{
		players:  players,
		cooldown: common.NewCooldown(cooldownPeriod),
	}
}

// HandleCommand rolls the dice for the invoking user
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
	pick := common.StringOption(opts, "pick", "")
	wager := common.StringOption(opts, "bet", "")
	user := common.InteractionUser(i)

	if _, err := f.players.EnsurePlayable(ctx, guildID, userID, user.Username); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	channelID, _ := strconv.ParseInt(i.ChannelID, 10, 64)
	result, err := f.players.Play(ctx, guildID, func(games service.GameService) (*models.GameResult, error) {
		return games.TaiXiu(ctx, &service.TaiXiuRequest{
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

	dice := diceOf(result.Round)
	if err := common.RespondWithMessage(s, i, RevealFrame(dice, 0), false); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("Failed to send tai xiu response")
		return
	}

	time.Sleep(rollDelay)
	for shown := 1; shown <= len(dice); shown++ {
		time.Sleep(revealDelay)
		content := RevealFrame(dice, shown)
		if shown == len(dice) {
			content = ResultMessage(result)
		}
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			log.WithField("user_id", userID).WithError(err).Warn("Failed to update tai xiu roll")
		}
	}
}

// RevealFrame shows the first shown dice and keeps the rest rolling
func RevealFrame(dice []int, shown int) string {
	parts := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		if i < shown && i < len(dice) {
			parts = append(parts, dieFaces[dice[i]])
		} else {
			parts = append(parts, rollingDie)
		}
	}
	return strings.Join(parts, " ")
}

// ResultMessage renders a settled round
func ResultMessage(result *models.GameResult) string {
	dice := diceOf(result.Round)
	total, _ := result.Round.Details["total"].(int)
	class, _ := result.Round.Details["result"].(string)

	var b strings.Builder
	b.WriteString(RevealFrame(dice, len(dice)))
	fmt.Fprintf(&b, "\nTotal: %d (%s)\n", total, ClassName(class))
	if result.Won {
		fmt.Fprintf(&b, "You won __**%s**__ %s!", common.FormatBalance(result.Round.Payout), common.Currency)
	} else {
		fmt.Fprintf(&b, "You lost __**%s**__ %s.", common.FormatBalance(result.Round.Wager), common.Currency)
	}
	return b.String()
}

// ClassName is the display name of tai or xiu
func ClassName(class string) string {
	switch class {
	case service.TaiXiuTai:
		return "Tài"
	case service.TaiXiuXiu:
		return "Xỉu"
	default:
		return class
	}
}

func diceOf(round *models.GameRound) []int {
	dice, _ := round.Details["dice"].([]int)
	return dice
}

// Command is the /taixiu definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "taixiu",
		Description: "Bet on three dice: tài (11-18) or xỉu (3-10)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "pick",
				Description: "Tài or xỉu",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Tài (11-18)", Value: service.TaiXiuTai},
					{Name: "Xỉu (3-10)", Value: service.TaiXiuXiu},
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
