package blackjack

import (
	"fmt"
	"strings"

	"elaina/bot/common"
	bj "elaina/game/blackjack"

	"github.com/bwmarrin/discordgo"
)

const (
	drawPrefix  = "bj_draw_"
	standPrefix = "bj_stand_"

	hiddenCard = "`??`"
)

var suitSymbols = map[string]string{
	"H": "♥",
	"D": "♦",
	"C": "♣",
	"S": "♠",
}

// FormatCard renders a card code like "10H" as "`10♥`"
func FormatCard(c bj.Card) string {
	suit, ok := suitSymbols[c.Suit()]
	if !ok {
		suit = c.Suit()
	}
	return "`" + c.Rank() + suit + "`"
}

// FormatHand renders a hand. A hidden hand shows only the first card.
func FormatHand(cards []bj.Card, hidden bool) string {
	if len(cards) == 0 {
		return "-"
	}
	if hidden {
		return FormatCard(cards[0]) + " " + hiddenCard
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = FormatCard(c)
	}
	return strings.Join(parts, " ")
}

// BuildEmbed renders a session view for the player named displayName
func BuildEmbed(view *bj.View, displayName, avatarURL string) *discordgo.MessageEmbed {
	dealerScore := fmt.Sprintf("%d", view.DealerScore)
	if view.DealerHidden {
		dealerScore = "?"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s bet %s on Blackjack!", displayName, common.FormatCoins(view.Wager)),
			IconURL: avatarURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("**%s [%d]**", displayName, view.PlayerScore),
				Value: FormatHand(view.PlayerCards, false),
			},
			{
				Name:  fmt.Sprintf("**Dealer [%s]**", dealerScore),
				Value: FormatHand(view.DealerCards, view.DealerHidden),
			},
		},
	}

	if footer := outcomeFooter(view); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	embed.Color = outcomeColor(view.Outcome)
	return embed
}

func outcomeFooter(view *bj.View) string {
	lost := common.FormatBalance(view.Wager)
	switch view.Outcome {
	case bj.OutcomeBust:
		return fmt.Sprintf("Bust! You lose. (-%s)", lost)
	case bj.OutcomeDealerBlackjack:
		return fmt.Sprintf("Dealer has Blackjack! You lose. (-%s)", lost)
	case bj.OutcomeLoss:
		return fmt.Sprintf("Dealer wins! You lose. (-%s)", lost)
	case bj.OutcomeDealerBust:
		return fmt.Sprintf("Dealer busts! You win. (+%s)", lost)
	case bj.OutcomeWin:
		return fmt.Sprintf("Congratulations, you win! (+%s)", lost)
	case bj.OutcomePush:
		return "Push!"
	case bj.OutcomeTimeout:
		return fmt.Sprintf("Timed out. The wager is forfeited. (-%s)", lost)
	case bj.OutcomeAborted:
		return fmt.Sprintf("Game cancelled. %s refunded.", common.FormatCoins(view.Wager))
	default:
		return ""
	}
}

func outcomeColor(outcome bj.Outcome) int {
	switch outcome {
	case bj.OutcomeWin, bj.OutcomeDealerBust:
		return common.ColorSuccess
	case bj.OutcomeBust, bj.OutcomeDealerBlackjack, bj.OutcomeLoss, bj.OutcomeTimeout:
		return common.ColorDanger
	default:
		return 0
	}
}

// Components returns the Draw/Stand buttons, disabled once the player can no longer act
func Components(view *bj.View) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Draw",
					Style:    discordgo.SuccessButton,
					CustomID: drawPrefix + view.SessionID,
					Disabled: !view.ButtonsActive,
				},
				discordgo.Button{
					Label:    "Stand",
					Style:    discordgo.DangerButton,
					CustomID: standPrefix + view.SessionID,
					Disabled: !view.ButtonsActive,
				},
			},
		},
	}
}

// ParseCustomID maps a button custom ID to the command it carries
func ParseCustomID(customID string) (bj.CommandKind, string, bool) {
	switch {
	case strings.HasPrefix(customID, drawPrefix):
		id := strings.TrimPrefix(customID, drawPrefix)
		return bj.CommandDraw, id, id != ""
	case strings.HasPrefix(customID, standPrefix):
		id := strings.TrimPrefix(customID, standPrefix)
		return bj.CommandStand, id, id != ""
	default:
		return 0, "", false
	}
}

// IsBlackjackComponent reports whether customID belongs to this feature
func IsBlackjackComponent(customID string) bool {
	return strings.HasPrefix(customID, "bj_")
}
