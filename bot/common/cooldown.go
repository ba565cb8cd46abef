package common

import (
	"sync"
	"time"
)

// Cooldown limits a command to one use per user per period and refuses
// overlapping runs for the same user
type Cooldown struct {
	period time.Duration
	now    func() time.Time

	mu     sync.Mutex
	last   map[int64]time.Time
	active map[int64]struct{}
}

// NewCooldown creates a per-user cooldown of period
func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period: period,
		now:    time.Now,
		last:   make(map[int64]time.Time),
		active: make(map[int64]struct{}),
	}
}

// Acquire claims the command for userID. When refused, retryAt is when the
// cooldown ends, or zero if a previous run is still in progress.
func (c *Cooldown) Acquire(userID int64) (retryAt time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.active[userID]; busy {
		return time.Time{}, false
	}

	now := c.now()
	if last, seen := c.last[userID]; seen {
		if until := last.Add(c.period); now.Before(until) {
			return until, false
		}
	}

	c.active[userID] = struct{}{}
	c.last[userID] = now

	// keep the map from growing with users who have not played in a while
	for id, t := range c.last {
		if now.Sub(t) > c.period {
			delete(c.last, id)
		}
	}
	return time.Time{}, true
}

// Release ends the run claimed by Acquire
func (c *Cooldown) Release(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, userID)
}

// CooldownError builds the reply for a refused Acquire
func CooldownError(retryAt time.Time) *BotError {
	if retryAt.IsZero() {
		return NewUserError("Your previous game is still running.", "command already in progress")
	}
	return NewUserError("Please wait until "+FormatDiscordTimestamp(retryAt, "R")+" before using this command again.", "command on cooldown")
}
