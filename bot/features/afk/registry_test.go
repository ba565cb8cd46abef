package afk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	since := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	r.Set("g1", "u1", "lunch", since)
	assert.Equal(t, 1, r.Len())

	_, ok := r.Mention("g2", "u1")
	assert.False(t, ok, "status is per guild")

	e, ok := r.Mention("g1", "u1")
	require.True(t, ok)
	assert.Equal(t, 1, e.Mentions)
	e, _ = r.Mention("g1", "u1")
	assert.Equal(t, 2, e.Mentions)

	cleared, ok := r.Clear("g1", "u1")
	require.True(t, ok)
	assert.Equal(t, "lunch", cleared.Reason)
	assert.Equal(t, 2, cleared.Mentions)
	assert.Equal(t, 0, r.Len())

	_, ok = r.Clear("g1", "u1")
	assert.False(t, ok)
}

func TestSetResetsMentions(t *testing.T) {
	r := NewRegistry()
	r.Set("g", "u", "a", time.Now())
	r.Mention("g", "u")
	r.Set("g", "u", "b", time.Now())

	e, ok := r.Mention("g", "u")
	require.True(t, ok)
	assert.Equal(t, "b", e.Reason)
	assert.Equal(t, 1, e.Mentions)
}

func TestMessages(t *testing.T) {
	since := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	now := since.Add(90 * time.Minute)

	assert.Equal(t, "Welcome back <@1>! You were AFK for 1h 30m.",
		WelcomeBack("<@1>", Entry{Since: since}, now))
	assert.Equal(t, "Welcome back <@1>! You were AFK for 1h 30m and were mentioned 1 time.",
		WelcomeBack("<@1>", Entry{Since: since, Mentions: 1}, now))
	assert.Equal(t, "Welcome back <@1>! You were AFK for 1h 30m and were mentioned 3 times.",
		WelcomeBack("<@1>", Entry{Since: since, Mentions: 3}, now))

	assert.Equal(t, "Elaina is AFK: lunch (<t:1792137600:R>)",
		MentionNotice("Elaina", Entry{Reason: "lunch", Since: since}))
}
