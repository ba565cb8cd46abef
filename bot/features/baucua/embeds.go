package baucua

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"elaina/bot/common"
	bc "elaina/game/baucua"

	"github.com/bwmarrin/discordgo"
)

const (
	betPrefix   = "bc_bet_"
	modalPrefix = "bc_modal_"

	fieldAmount = "amount"
)

// IsBauCuaInteraction reports whether customID belongs to a bầu cua button or modal
func IsBauCuaInteraction(customID string) bool {
	return strings.HasPrefix(customID, betPrefix) || strings.HasPrefix(customID, modalPrefix)
}

func betID(prefix, roundID string, animal bc.Animal) string {
	return prefix + string(animal) + "_" + roundID
}

// ParseBetID splits a bet button custom ID into round and animal
func ParseBetID(customID string) (roundID string, animal bc.Animal, ok bool) {
	return splitBetID(customID, betPrefix)
}

// ParseModalID splits a stake modal custom ID into round and animal
func ParseModalID(customID string) (roundID string, animal bc.Animal, ok bool) {
	return splitBetID(customID, modalPrefix)
}

func splitBetID(customID, prefix string) (string, bc.Animal, bool) {
	rest, found := strings.CutPrefix(customID, prefix)
	if !found {
		return "", "", false
	}
	name, roundID, found := strings.Cut(rest, "_")
	if !found || roundID == "" {
		return "", "", false
	}
	animal, ok := bc.ParseAnimal(name)
	if !ok {
		return "", "", false
	}
	return roundID, animal, true
}

// Components are the six animal buttons, three per row
func Components(roundID string, active bool) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, 2)
	for start := 0; start < len(bc.Animals); start += 3 {
		buttons := make([]discordgo.MessageComponent, 0, 3)
		for _, animal := range bc.Animals[start : start+3] {
			buttons = append(buttons, discordgo.Button{
				Label:    animal.Name(),
				Emoji:    &discordgo.ComponentEmoji{Name: animal.Emoji()},
				Style:    discordgo.SecondaryButton,
				CustomID: betID(betPrefix, roundID, animal),
				Disabled: !active,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// StakeModal asks how much to stake on animal
func StakeModal(roundID string, animal bc.Animal) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: betID(modalPrefix, roundID, animal),
		Title:    fmt.Sprintf("Bet on %s %s", animal.Emoji(), animal.Name()),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    fieldAmount,
						Label:       "Amount",
						Style:       discordgo.TextInputShort,
						Placeholder: fmt.Sprintf("Up to %s, or \"all\"", common.FormatBalance(bc.MaxStake)),
						Required:    true,
						MaxLength:   12,
					},
				},
			},
		},
	}
}

// FormatDice renders a roll as emoji
func FormatDice(dice bc.Dice) string {
	parts := make([]string, len(dice))
	for n, face := range dice {
		parts[n] = face.Emoji() + " " + face.Name()
	}
	return strings.Join(parts, " | ")
}

func totalsField(totals map[bc.Animal]int64) string {
	var b strings.Builder
	for _, animal := range bc.Animals {
		fmt.Fprintf(&b, "%s **%s**: %s\n", animal.Emoji(), animal.Name(), common.FormatBalance(totals[animal]))
	}
	return b.String()
}

// BuildRoundEmbed shows an open round with the stakes placed so far
func BuildRoundEmbed(snap bc.Snapshot, ownerName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🦀 Bầu Cua Tôm Cá",
		Description: fmt.Sprintf("%s opened a table. Pick an animal to bet on.\nBetting closes %s.",
			ownerName, common.FormatDiscordTimestamp(snap.ClosesAt, "R")),
		Color: common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stakes", Value: totalsField(snap.Totals), Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%d", len(snap.Players)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Max %s per animal • at least %d players", common.FormatCoins(bc.MaxStake), bc.MinPlayers),
		},
	}
}

// BuildResultEmbed reports a closed round. nameOf resolves player ids for display.
func BuildResultEmbed(result *bc.Result, nameOf func(int64) string, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🦀 Bầu Cua Tôm Cá",
		Timestamp: now.Format(time.RFC3339),
	}

	if !result.Rolled {
		embed.Color = common.ColorWarning
		embed.Description = refundText(result)
		return embed
	}

	embed.Color = common.ColorSuccess
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Dice", Value: FormatDice(result.Dice)})

	settled := append([]*bc.Settlement(nil), result.Settled...)
	sort.SliceStable(settled, func(a, b int) bool {
		return settled[a].Payout-settled[a].Wager > settled[b].Payout-settled[b].Wager
	})

	var winners, losers strings.Builder
	for _, s := range settled {
		net := s.Payout - s.Wager
		line := fmt.Sprintf("%s: %s\n", nameOf(s.UserID), common.FormatSigned(net))
		if s.Payout > 0 {
			winners.WriteString(line)
		} else {
			losers.WriteString(line)
		}
	}
	if winners.Len() == 0 {
		winners.WriteString("Nobody won this round.")
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Winners", Value: winners.String()})
	if losers.Len() > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Lost", Value: losers.String()})
	}
	return embed
}

func refundText(result *bc.Result) string {
	reason := fmt.Sprintf("Fewer than %d players joined.", bc.MinPlayers)
	if result.Snapshot.State == bc.StateAborted {
		reason = "The round was cancelled."
	}
	if len(result.Refunded) == 0 {
		return reason + " No bets were placed."
	}
	var total int64
	for _, amount := range result.Refunded {
		total += amount
	}
	return fmt.Sprintf("%s %s was refunded to %d player(s).", reason, common.FormatCoins(total), len(result.Refunded))
}
