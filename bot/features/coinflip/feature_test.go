package coinflip

import (
	"testing"

	"elaina/models"

	"github.com/stretchr/testify/assert"
)

func TestResultMessage(t *testing.T) {
	won := &models.GameResult{
		Round:      &models.GameRound{Wager: 2500, Details: map[string]any{"side": "heads"}},
		Won:        true,
		NewBalance: 12500,
	}
	assert.Equal(t, "The coin landed on **heads**!\nYou won __**2,500**__ ecoin! Balance: 12,500 ecoin", ResultMessage(won))

	lost := &models.GameResult{
		Round:      &models.GameRound{Wager: 2500, Details: map[string]any{"side": "tails"}},
		NewBalance: 7500,
	}
	assert.Equal(t, "Sorry, the coin landed on **tails**.\nYou lost __**2,500**__ ecoin. Balance: 7,500 ecoin", ResultMessage(lost))
}

func TestCommandDefinition(t *testing.T) {
	cmd := Command()
	assert.Equal(t, "coinflip", cmd.Name)
	assert.Len(t, cmd.Options, 2)
	assert.True(t, cmd.Options[0].Required)
	assert.Len(t, cmd.Options[0].Choices, 2)
}
