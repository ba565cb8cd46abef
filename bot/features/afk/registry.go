package afk

import (
	"sync"
	"time"
)

// Entry is one member's AFK status
type Entry struct {
	Reason   string
	Since    time.Time
	Mentions int
}

type key struct {
	guildID string
	userID  string
}

// Registry tracks AFK members in memory, per guild
type Registry struct {
	mu      sync.Mutex
	entries map[key]*Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]*Entry)}
}

// Set marks a member AFK, replacing any previous status
func (r *Registry) Set(guildID, userID, reason string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key{guildID, userID}] = &Entry{Reason: reason, Since: now}
}

// Clear removes a member's status and returns it
func (r *Registry) Clear(guildID, userID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{guildID, userID}
	e, ok := r.entries[k]
	if !ok {
		return Entry{}, false
	}
	delete(r.entries, k)
	return *e, true
}

// Mention counts a mention of an AFK member and returns their status
func (r *Registry) Mention(guildID, userID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key{guildID, userID}]
	if !ok {
		return Entry{}, false
	}
	e.Mentions++
	return *e, true
}

// Len returns the number of AFK members across all guilds
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
