package models

import (
	"time"
)

// User represents a Discord user with a balance
type User struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	Banned    bool      `db:"banned"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserUpdate is a partial user record. Nil fields are left untouched on merge.
type UserUpdate struct {
	Username *string
	Balance  *int64
	Banned   *bool
}
