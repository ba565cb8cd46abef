package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(5 * time.Second)
	c.now = func() time.Time { return now }

	_, ok := c.Acquire(1)
	assert.True(t, ok)

	// still running
	retryAt, ok := c.Acquire(1)
	assert.False(t, ok)
	assert.True(t, retryAt.IsZero())

	c.Release(1)

	// finished but cooling down
	retryAt, ok = c.Acquire(1)
	assert.False(t, ok)
	assert.Equal(t, now.Add(5*time.Second), retryAt)

	// other users are unaffected
	_, ok = c.Acquire(2)
	assert.True(t, ok)

	now = now.Add(5 * time.Second)
	_, ok = c.Acquire(1)
	assert.True(t, ok)
}

func TestCooldownError(t *testing.T) {
	assert.Equal(t, "Your previous game is still running.", CooldownError(time.Time{}).UserMessage)

	at := time.Unix(1700000000, 0)
	assert.Contains(t, CooldownError(at).UserMessage, "<t:1700000000:R>")
}
