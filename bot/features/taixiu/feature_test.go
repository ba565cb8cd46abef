package taixiu

import (
	"testing"

	"elaina/models"

	"github.com/stretchr/testify/assert"
)

func TestRevealFrame(t *testing.T) {
	dice := []int{2, 5, 6}

	assert.Equal(t, "🎲 🎲 🎲", RevealFrame(dice, 0))
	assert.Equal(t, "⚁ 🎲 🎲", RevealFrame(dice, 1))
	assert.Equal(t, "⚁ ⚄ ⚅", RevealFrame(dice, 3))
}

func TestResultMessage(t *testing.T) {
	round := &models.GameRound{
		Wager:  1000,
		Payout: 2000,
		Details: map[string]any{
			"dice":   []int{2, 5, 6},
			"total":  13,
			"result": "tai",
		},
	}

	won := ResultMessage(&models.GameResult{Round: round, Won: true})
	assert.Equal(t, "⚁ ⚄ ⚅\nTotal: 13 (Tài)\nYou won __**2,000**__ ecoin!", won)

	round.Payout = 0
	lost := ResultMessage(&models.GameResult{Round: round})
	assert.Equal(t, "⚁ ⚄ ⚅\nTotal: 13 (Tài)\nYou lost __**1,000**__ ecoin.", lost)
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "Tài", ClassName("tai"))
	assert.Equal(t, "Xỉu", ClassName("xiu"))
}
