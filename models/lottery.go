package models

import (
	"time"
)

// LotteryTicket is one purchased number for a daily draw
type LotteryTicket struct {
	ID           int64     `db:"id"`
	DrawDate     time.Time `db:"draw_date"`
	DiscordID    int64     `db:"discord_id"`
	GuildID      int64     `db:"guild_id"`
	TicketNumber string    `db:"ticket_number"`
	Price        int64     `db:"price"`
	Prize        *int64    `db:"prize"`
	PurchasedAt  time.Time `db:"purchased_at"`
}

// IsWinner reports whether the ticket was paid a prize
func (t *LotteryTicket) IsWinner() bool {
	return t.Prize != nil && *t.Prize > 0
}

// LotteryDraw records the winning numbers of a daily draw.
// WinningNumbers[i] pays the i-th prize tier.
type LotteryDraw struct {
	DrawDate       time.Time `db:"draw_date"`
	WinningNumbers []string  `db:"winning_numbers"`
	WinnerCount    int       `db:"winner_count"`
	TotalPaid      int64     `db:"total_paid"`
	DrawnAt        time.Time `db:"drawn_at"`
}

// LotteryWinner pairs a winning ticket with its prize tier
type LotteryWinner struct {
	Ticket *LotteryTicket
	Tier   int
	Prize  int64
}
