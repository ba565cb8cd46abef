package blackjack

import (
	"testing"

	bj "elaina/game/blackjack"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHand(t *testing.T) {
	cards := []bj.Card{"10H", "AS", "QD"}

	assert.Equal(t, "`10♥` `A♠` `Q♦`", FormatHand(cards, false))
	assert.Equal(t, "`10♥` `??`", FormatHand(cards, true))
	assert.Equal(t, "-", FormatHand(nil, false))
}

func TestBuildEmbed_PlayerTurnHidesDealer(t *testing.T) {
	view := &bj.View{
		SessionID:     "abc",
		Wager:         1000,
		PlayerCards:   []bj.Card{"2H", "5C"},
		DealerCards:   []bj.Card{"KS", "8D"},
		PlayerScore:   7,
		DealerScore:   10,
		DealerHidden:  true,
		State:         bj.StatePlayerTurn,
		ButtonsActive: true,
	}

	embed := BuildEmbed(view, "Elaina", "")

	assert.Equal(t, "Elaina bet 1,000 ecoin on Blackjack!", embed.Author.Name)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "**Elaina [7]**", embed.Fields[0].Name)
	assert.Equal(t, "**Dealer [?]**", embed.Fields[1].Name)
	assert.Equal(t, "`K♠` `??`", embed.Fields[1].Value)
	assert.Nil(t, embed.Footer)
	assert.Zero(t, embed.Color)
}

func TestBuildEmbed_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome bj.Outcome
		footer  string
		color   int
	}{
		{"win", bj.OutcomeWin, "Congratulations, you win! (+500)", 0x57F287},
		{"dealer bust", bj.OutcomeDealerBust, "Dealer busts! You win. (+500)", 0x57F287},
		{"bust", bj.OutcomeBust, "Bust! You lose. (-500)", 0xED4245},
		{"loss", bj.OutcomeLoss, "Dealer wins! You lose. (-500)", 0xED4245},
		{"dealer blackjack", bj.OutcomeDealerBlackjack, "Dealer has Blackjack! You lose. (-500)", 0xED4245},
		{"push", bj.OutcomePush, "Push!", 0},
		{"aborted", bj.OutcomeAborted, "Game cancelled. 500 ecoin refunded.", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := &bj.View{
				Wager:       500,
				PlayerCards: []bj.Card{"10H", "9C"},
				DealerCards: []bj.Card{"10S", "8S"},
				PlayerScore: 19,
				DealerScore: 18,
				State:       bj.StateSettled,
				Outcome:     tt.outcome,
			}

			embed := BuildEmbed(view, "Elaina", "")

			require.NotNil(t, embed.Footer)
			assert.Equal(t, tt.footer, embed.Footer.Text)
			assert.Equal(t, tt.color, embed.Color)
			assert.Equal(t, "**Dealer [18]**", embed.Fields[1].Name)
		})
	}
}

func TestComponents_DisabledWhenFinished(t *testing.T) {
	active := Components(&bj.View{SessionID: "s1", ButtonsActive: true})
	finished := Components(&bj.View{SessionID: "s1"})

	row := active[0].(discordgo.ActionsRow)
	draw := row.Components[0].(discordgo.Button)
	stand := row.Components[1].(discordgo.Button)
	assert.Equal(t, "bj_draw_s1", draw.CustomID)
	assert.Equal(t, "bj_stand_s1", stand.CustomID)
	assert.False(t, draw.Disabled)

	row = finished[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[0].(discordgo.Button).Disabled)
	assert.True(t, row.Components[1].(discordgo.Button).Disabled)
}

func TestParseCustomID(t *testing.T) {
	kind, id, ok := ParseCustomID("bj_draw_1234")
	assert.True(t, ok)
	assert.Equal(t, bj.CommandDraw, kind)
	assert.Equal(t, "1234", id)

	kind, id, ok = ParseCustomID("bj_stand_1234")
	assert.True(t, ok)
	assert.Equal(t, bj.CommandStand, kind)
	assert.Equal(t, "1234", id)

	_, _, ok = ParseCustomID("bj_draw_")
	assert.False(t, ok)
	_, _, ok = ParseCustomID("lotto_buy_1")
	assert.False(t, ok)
}
