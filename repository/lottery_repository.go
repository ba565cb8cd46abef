package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elaina/models"
	"elaina/service"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, draw_date, discord_id, guild_id, ticket_number, price, prize, purchased_at`

// LotteryRepository stores tickets and completed draws. Draws are global;
// tickets remember the guild they were bought in.
type LotteryRepository struct {
	q       queryable
	guildID int64
}

func newLotteryRepository(tx queryable, guildID int64) *LotteryRepository {
	return &LotteryRepository{q: tx, guildID: guildID}
}

func scanTicket(row pgx.Row) (*models.LotteryTicket, error) {
	var t models.LotteryTicket
	err := row.Scan(&t.ID, &t.DrawDate, &t.DiscordID, &t.GuildID, &t.TicketNumber, &t.Price, &t.Prize, &t.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTickets(rows pgx.Rows) ([]*models.LotteryTicket, error) {
	defer rows.Close()

	var tickets []*models.LotteryTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

// CreateTicket inserts a purchased ticket
func (r *LotteryRepository) CreateTicket(ctx context.Context, ticket *models.LotteryTicket) error {
	if ticket.GuildID == 0 {
		ticket.GuildID = r.guildID
	}

	query := `
		INSERT INTO lottery_tickets (draw_date, discord_id, guild_id, ticket_number, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, purchased_at
	`
	err := r.q.QueryRow(ctx, query,
		ticket.DrawDate,
		ticket.DiscordID,
		ticket.GuildID,
		ticket.TicketNumber,
		ticket.Price,
	).Scan(&ticket.ID, &ticket.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to create lottery ticket for user %d: %w", ticket.DiscordID, err)
	}
	return nil
}

// CountTicketsForUser returns how many tickets the user holds for drawDate
func (r *LotteryRepository) CountTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM lottery_tickets WHERE draw_date = $1 AND discord_id = $2`,
		drawDate, discordID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets for user %d: %w", discordID, err)
	}
	return count, nil
}

// GetTicketsForUser returns the user's tickets for drawDate in purchase order
func (r *LotteryRepository) GetTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) ([]*models.LotteryTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM lottery_tickets
		WHERE draw_date = $1 AND discord_id = $2
		ORDER BY purchased_at, id
	`
	rows, err := r.q.Query(ctx, query, drawDate, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for user %d: %w", discordID, err)
	}
	return collectTickets(rows)
}

// GetTicketsByNumbers returns every ticket for drawDate whose number is in numbers
func (r *LotteryRepository) GetTicketsByNumbers(ctx context.Context, drawDate time.Time, numbers []string) ([]*models.LotteryTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM lottery_tickets
		WHERE draw_date = $1 AND ticket_number = ANY($2::CHAR(6)[])
		ORDER BY id
	`
	rows, err := r.q.Query(ctx, query, drawDate, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to get winning tickets: %w", err)
	}
	return collectTickets(rows)
}

// SetTicketPrize records what a ticket won
func (r *LotteryRepository) SetTicketPrize(ctx context.Context, ticketID int64, prize int64) error {
	result, err := r.q.Exec(ctx, `UPDATE lottery_tickets SET prize = $1 WHERE id = $2`, prize, ticketID)
	if err != nil {
		return fmt.Errorf("failed to set prize on ticket %d: %w", ticketID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("lottery ticket %d not found", ticketID)
	}
	return nil
}

// CreateDraw stores a completed draw. A second draw for the same date fails with ErrDrawAlreadyDone.
func (r *LotteryRepository) CreateDraw(ctx context.Context, draw *models.LotteryDraw) error {
	query := `
		INSERT INTO lottery_draws (draw_date, winning_numbers, winner_count, total_paid)
		VALUES ($1, $2, $3, $4)
		RETURNING drawn_at
	`
	err := r.q.QueryRow(ctx, query,
		draw.DrawDate,
		draw.WinningNumbers,
		draw.WinnerCount,
		draw.TotalPaid,
	).Scan(&draw.DrawnAt)
	if isUniqueViolation(err) {
		return service.ErrDrawAlreadyDone
	}
	if err != nil {
		return fmt.Errorf("failed to create draw for %s: %w", draw.DrawDate.Format(time.DateOnly), err)
	}
	return nil
}

func scanDraw(row pgx.Row) (*models.LotteryDraw, error) {
	var d models.LotteryDraw
	err := row.Scan(&d.DrawDate, &d.WinningNumbers, &d.WinnerCount, &d.TotalPaid, &d.DrawnAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDraw returns the draw for drawDate, nil if it has not happened
func (r *LotteryRepository) GetDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDraw, error) {
	draw, err := scanDraw(r.q.QueryRow(ctx, `
		SELECT draw_date, winning_numbers, winner_count, total_paid, drawn_at
		FROM lottery_draws
		WHERE draw_date = $1
	`, drawDate))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	return draw, nil
}

// GetLatestDraw returns the most recent draw, nil if there has been none
func (r *LotteryRepository) GetLatestDraw(ctx context.Context) (*models.LotteryDraw, error) {
	draw, err := scanDraw(r.q.QueryRow(ctx, `
		SELECT draw_date, winning_numbers, winner_count, total_paid, drawn_at
		FROM lottery_draws
		ORDER BY draw_date DESC
		LIMIT 1
	`))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest draw: %w", err)
	}
	return draw, nil
}
