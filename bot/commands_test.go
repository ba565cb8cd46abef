package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandDefinitionsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range commandDefinitions() {
		assert.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		assert.LessOrEqual(t, len(cmd.Description), 100, cmd.Name)
	}

	for _, name := range []string{
		"balance", "give", "economy", "blackjack", "coinflip", "taixiu", "lottery", "mod",
		"embed", "greet", "weather", "afk", "ping", "settings", "stats", "leaderboard",
		"baucua", "userinfo", "serverinfo", "avatar", "about", "chat",
	} {
		assert.True(t, seen[name], "missing command %s", name)
	}
}
