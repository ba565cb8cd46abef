package lottery

import (
	"testing"
	"time"

	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drawDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func TestPurchaseEmbed(t *testing.T) {
	purchase := &models.LotteryPurchase{
		Ticket:       &models.LotteryTicket{TicketNumber: "123456", Price: 244, DrawDate: drawDate},
		TicketsOwned: 1,
		NextPrice:    488,
		NewBalance:   9756,
	}

	embed := PurchaseEmbed(purchase)

	assert.Contains(t, embed.Description, "`123456`")
	assert.Contains(t, embed.Description, "244 ecoin")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "1/10", embed.Fields[0].Value)
	assert.Equal(t, "2025-03-14", embed.Fields[1].Value)
	assert.Equal(t, "Next ticket costs 488 ecoin", embed.Footer.Text)

	purchase.TicketsOwned = 10
	purchase.NextPrice = 0
	assert.Equal(t, "You hold the maximum number of tickets for this draw", PurchaseEmbed(purchase).Footer.Text)
}

func TestTicketsEmbed(t *testing.T) {
	empty := TicketsEmbed("Elaina", nil)
	assert.Contains(t, empty.Description, "no tickets")
	assert.Equal(t, "First ticket costs 244 ecoin", empty.Footer.Text)

	tickets := []*models.LotteryTicket{
		{TicketNumber: "000001", Price: 244, DrawDate: drawDate},
		{TicketNumber: "999999", Price: 488, DrawDate: drawDate},
	}
	embed := TicketsEmbed("Elaina", tickets)
	assert.Equal(t, "🎟️ Elaina's tickets", embed.Title)
	assert.Contains(t, embed.Description, "`000001` (244 ecoin)")
	assert.Equal(t, "732 ecoin", embed.Fields[1].Value)
	assert.Equal(t, "Next ticket costs 977 ecoin", embed.Footer.Text)
}

func TestDrawEmbed(t *testing.T) {
	draw := &models.LotteryDraw{
		DrawDate:       drawDate,
		WinningNumbers: []string{"111111", "222222", "333333", "444444", "555555", "666666", "777777", "888888"},
		WinnerCount:    1,
		TotalPaid:      40000,
	}
	winners := []*models.LotteryWinner{
		{Ticket: &models.LotteryTicket{DiscordID: 42, TicketNumber: "888888"}, Tier: 7, Prize: 40000},
	}

	embed := DrawEmbed(draw, winners)

	assert.Equal(t, "🎰 Lottery results 2025-03-14", embed.Title)
	assert.Contains(t, embed.Description, "**Special prize** `111111` (500M)")
	assert.Contains(t, embed.Description, "**Seventh prize** `888888` (40k)")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "<@42> `888888` Seventh prize (+40,000)\n", embed.Fields[2].Value)

	assert.Len(t, DrawEmbed(draw, nil).Fields, 2)
}

func TestWinnersByGuild(t *testing.T) {
	winners := []*models.LotteryWinner{
		{Ticket: &models.LotteryTicket{GuildID: 1}},
		{Ticket: &models.LotteryTicket{GuildID: 2}},
		{Ticket: &models.LotteryTicket{GuildID: 1}},
	}

	grouped := WinnersByGuild(winners)
	assert.Len(t, grouped[1], 2)
	assert.Len(t, grouped[2], 1)
}

func TestTierName(t *testing.T) {
	assert.Equal(t, "Special prize", TierName(0))
	assert.Equal(t, "Prize 9", TierName(8))
}
