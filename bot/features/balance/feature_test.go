package balance

import (
	"errors"
	"testing"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceEmbed(t *testing.T) {
	embed := BalanceEmbed("Elaina", "https://cdn.example/a.png", &models.User{Balance: 1234567})

	assert.Equal(t, "Elaina", embed.Author.Name)
	assert.Equal(t, "https://cdn.example/a.png", embed.Author.IconURL)
	assert.Equal(t, "Balance: **1,234,567 ecoin**", embed.Description)
	assert.Equal(t, common.ColorGold, embed.Color)
	assert.Nil(t, embed.Footer)

	banned := BalanceEmbed("Saya", "", &models.User{Balance: 0, Banned: true})
	require.NotNil(t, banned.Footer)
	assert.Equal(t, "Banned from gambling", banned.Footer.Text)
}

func TestTransferError(t *testing.T) {
	tests := []struct {
		err      error
		userFacing bool
		message  string
	}{
		{service.ErrInvalidAmount, true, "The amount must be positive."},
		{service.ErrSelfTransfer, true, "You can't give ecoin to yourself."},
		{service.ErrInsufficientBalance, true, "You don't have enough ecoin."},
		{errors.New("connection reset"), false, ""},
	}

	for _, tt := range tests {
		var botErr *common.BotError
		require.ErrorAs(t, transferError(tt.err), &botErr, tt.err.Error())
		if tt.userFacing {
			assert.Equal(t, tt.message, botErr.UserMessage)
		} else {
			assert.ErrorIs(t, botErr, tt.err)
		}
	}
}

func TestCommands(t *testing.T) {
	byName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range Commands() {
		byName[cmd.Name] = cmd
	}
	require.Len(t, byName, 3)

	give := byName["give"]
	require.NotNil(t, give)
	require.Len(t, give.Options, 2)
	assert.True(t, give.Options[0].Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, give.Options[1].Type)
	require.NotNil(t, give.Options[1].MinValue)
	assert.Equal(t, 1.0, *give.Options[1].MinValue)

	assert.False(t, byName["balance"].Options[0].Required)

	var subs []string
	for _, opt := range byName["economy"].Options {
		subs = append(subs, opt.Name)
	}
	assert.Equal(t, []string{"ban", "unban", "adjust"}, subs)
}
