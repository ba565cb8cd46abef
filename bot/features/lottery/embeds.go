package lottery

import (
	"fmt"
	"strings"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
)

var tierNames = []string{"Special prize", "First prize", "Second prize", "Third prize", "Fourth prize", "Fifth prize", "Sixth prize", "Seventh prize"}

// TierName is the display name of prize tier (0 is the jackpot)
func TierName(tier int) string {
	if tier >= 0 && tier < len(tierNames) {
		return tierNames[tier]
	}
	return fmt.Sprintf("Prize %d", tier+1)
}

// PurchaseEmbed confirms a bought ticket
func PurchaseEmbed(purchase *models.LotteryPurchase) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🎟️ Ticket purchased",
		Description: fmt.Sprintf("Bought ticket `%s` for **%s**.", purchase.Ticket.TicketNumber, common.FormatCoins(purchase.Ticket.Price)),
		Color:       common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Tickets",
				Value:  fmt.Sprintf("%d/%d", purchase.TicketsOwned, service.MaxTicketsPerDraw),
				Inline: true,
			},
			{
				Name:   "Draw",
				Value:  purchase.Ticket.DrawDate.Format(time.DateOnly),
				Inline: true,
			},
			{
				Name:   "Balance",
				Value:  common.FormatCoins(purchase.NewBalance),
				Inline: true,
			},
		},
	}
	if purchase.NextPrice > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Next ticket costs " + common.FormatCoins(purchase.NextPrice)}
	} else {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "You hold the maximum number of tickets for this draw"}
	}
	return embed
}

// TicketsEmbed lists a user's tickets for the open draw
func TicketsEmbed(displayName string, tickets []*models.LotteryTicket) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎟️ %s's tickets", displayName),
		Color: common.ColorGold,
	}
	if len(tickets) == 0 {
		embed.Description = "You have no tickets for the next draw. Buy one with `/lottery buy`."
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "First ticket costs " + common.FormatCoins(service.TicketPrice(0))}
		return embed
	}

	var b strings.Builder
	var spent int64
	for _, t := range tickets {
		fmt.Fprintf(&b, "`%s` (%s)\n", t.TicketNumber, common.FormatCoins(t.Price))
		spent += t.Price
	}
	embed.Description = b.String()
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Draw", Value: tickets[0].DrawDate.Format(time.DateOnly), Inline: true},
		{Name: "Spent", Value: common.FormatCoins(spent), Inline: true},
	}
	if len(tickets) < service.MaxTicketsPerDraw {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Next ticket costs " + common.FormatCoins(service.TicketPrice(len(tickets)))}
	}
	return embed
}

// DrawEmbed announces a draw. winners may be limited to one guild's tickets.
func DrawEmbed(draw *models.LotteryDraw, winners []*models.LotteryWinner) *discordgo.MessageEmbed {
	var numbers strings.Builder
	for tier, n := range draw.WinningNumbers {
		prize := int64(0)
		if tier < len(service.LotteryPrizes) {
			prize = service.LotteryPrizes[tier]
		}
		fmt.Fprintf(&numbers, "**%s** `%s` (%s)\n", TierName(tier), n, common.FormatBalanceCompact(prize))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎰 Lottery results " + draw.DrawDate.Format(time.DateOnly),
		Description: numbers.String(),
		Color:       common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Winners", Value: fmt.Sprintf("%d", draw.WinnerCount), Inline: true},
			{Name: "Paid out", Value: common.FormatCoins(draw.TotalPaid), Inline: true},
		},
	}

	if len(winners) > 0 {
		var b strings.Builder
		for _, w := range winners {
			fmt.Fprintf(&b, "%s `%s` %s (+%s)\n", common.GetUserMention(w.Ticket.DiscordID), w.Ticket.TicketNumber, TierName(w.Tier), common.FormatBalance(w.Prize))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Winning tickets",
			Value: common.Truncate(b.String(), common.MaxEmbedFieldLength),
		})
	}
	if !draw.DrawnAt.IsZero() {
		embed.Timestamp = draw.DrawnAt.Format(time.RFC3339)
	}
	return embed
}

// WinnerDM congratulates one winning ticket holder
func WinnerDM(draw *models.LotteryDraw, winner *models.LotteryWinner) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎉 Your lottery ticket won!",
		Description: fmt.Sprintf("Ticket `%s` won the **%s** in the %s draw: **%s**.",
			winner.Ticket.TicketNumber, TierName(winner.Tier), draw.DrawDate.Format(time.DateOnly), common.FormatCoins(winner.Prize)),
		Color: common.ColorSuccess,
	}
}

// WinnersByGuild groups winners by the guild the ticket was bought in
func WinnersByGuild(winners []*models.LotteryWinner) map[int64][]*models.LotteryWinner {
	grouped := make(map[int64][]*models.LotteryWinner)
	for _, w := range winners {
		grouped[w.Ticket.GuildID] = append(grouped[w.Ticket.GuildID], w)
	}
	return grouped
}
