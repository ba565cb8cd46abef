package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"elaina/events"
	"elaina/game"
	"elaina/models"

	log "github.com/sirupsen/logrus"
)

const (
	// MaxTicketsPerDraw is how many numbers one user may hold in a single draw
	MaxTicketsPerDraw = 10

	lotteryPriceBudget = 250000
	lotteryNumberSpace = 999999
)

// LotteryPrizes pays tier i to a ticket matching the i-th winning number
var LotteryPrizes = []int64{500000000, 10000000, 5000000, 1000000, 400000, 200000, 100000, 40000}

// TicketPrice returns the price of the next ticket when owned tickets are already held.
// Prices double per ticket so that a full set of ten costs the price budget.
func TicketPrice(owned int) int64 {
	return int64(math.Floor(float64(lotteryPriceBudget) / float64(int64(1)<<MaxTicketsPerDraw-1) * float64(int64(1)<<owned)))
}

// LotteryDrawDate is the calendar date of now in loc, truncated to midnight UTC
func LotteryDrawDate(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidTicketNumber reports whether number is exactly six ASCII digits
func ValidTicketNumber(number string) bool {
	if len(number) != 6 {
		return false
	}
	for _, ch := range number {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

type lotteryService struct {
	lotteryRepo        LotteryRepository
	userRepo           UserRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventPublisher     EventPublisher
	location           *time.Location
	rand               game.Rand
	guildID            int64
}

// NewLotteryService creates a lottery service. Draw dates are calendar days in loc.
func NewLotteryService(lotteryRepo LotteryRepository, userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, eventPublisher EventPublisher, guildID int64, loc *time.Location, rand game.Rand) LotteryService {
	if loc == nil {
		loc = time.UTC
	}
	if rand == nil {
		rand = game.DefaultRand
	}
	return &lotteryService{
		lotteryRepo:        lotteryRepo,
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		location:           loc,
		rand:               rand,
		guildID:            guildID,
	}
}

// openDrawDate is today's draw, or tomorrow's once today's has been drawn
func (s *lotteryService) openDrawDate(ctx context.Context, now time.Time) (time.Time, error) {
	date := LotteryDrawDate(now, s.location)
	draw, err := s.lotteryRepo.GetDraw(ctx, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to check draw: %w", err)
	}
	if draw != nil {
		return date.AddDate(0, 0, 1), nil
	}
	return date, nil
}

// BuyTicket purchases number for the draw that is open at now
func (s *lotteryService) BuyTicket(ctx context.Context, discordID int64, number string, now time.Time) (*models.LotteryPurchase, error) {
	if !ValidTicketNumber(number) {
		return nil, ErrInvalidTicketNumber
	}

	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Banned {
		return nil, ErrUserBanned
	}

	drawDate, err := s.openDrawDate(ctx, now)
	if err != nil {
		return nil, err
	}

	owned, err := s.lotteryRepo.CountTicketsForUser(ctx, drawDate, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	if owned >= MaxTicketsPerDraw {
		return nil, ErrTicketLimitReached
	}

	price := TicketPrice(owned)
	if user.Balance < price {
		return nil, ErrInsufficientBalance
	}

	newBalance, err := debitWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
		discordID, s.guildID, price, models.TransactionTypeLotteryTicket, map[string]any{
			"draw_date":     drawDate.Format(time.DateOnly),
			"ticket_number": number,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to charge ticket: %w", err)
	}

	ticket := &models.LotteryTicket{
		DrawDate:     drawDate,
		DiscordID:    discordID,
		GuildID:      s.guildID,
		TicketNumber: number,
		Price:        price,
	}
	if err := s.lotteryRepo.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to store ticket: %w", err)
	}

	purchase := &models.LotteryPurchase{
		Ticket:       ticket,
		TicketsOwned: owned + 1,
		NewBalance:   newBalance,
	}
	if purchase.TicketsOwned < MaxTicketsPerDraw {
		purchase.NextPrice = TicketPrice(purchase.TicketsOwned)
	}
	return purchase, nil
}

// GetTickets returns the user's tickets for the draw that is open at now
func (s *lotteryService) GetTickets(ctx context.Context, discordID int64, now time.Time) ([]*models.LotteryTicket, error) {
	drawDate, err := s.openDrawDate(ctx, now)
	if err != nil {
		return nil, err
	}
	tickets, err := s.lotteryRepo.GetTicketsForUser(ctx, drawDate, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	return tickets, nil
}

// ConductDraw picks the winning numbers for drawDate and pays every matching ticket
func (s *lotteryService) ConductDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDrawResult, error) {
	existing, err := s.lotteryRepo.GetDraw(ctx, drawDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check draw: %w", err)
	}
	if existing != nil {
		return nil, ErrDrawAlreadyDone
	}

	numbers := s.pickWinningNumbers()
	tierOf := make(map[string]int, len(numbers))
	for i, n := range numbers {
		tierOf[n] = i
	}

	tickets, err := s.lotteryRepo.GetTicketsByNumbers(ctx, drawDate, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to find winning tickets: %w", err)
	}

	draw := &models.LotteryDraw{
		DrawDate:       drawDate,
		WinningNumbers: numbers,
	}
	result := &models.LotteryDrawResult{Draw: draw}

	for _, ticket := range tickets {
		tier, ok := tierOf[ticket.TicketNumber]
		if !ok {
			continue
		}
		prize := LotteryPrizes[tier]

		if _, err := creditWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
			ticket.DiscordID, ticket.GuildID, prize, models.TransactionTypeLotteryPrize, map[string]any{
				"draw_date":     drawDate.Format(time.DateOnly),
				"ticket_id":     ticket.ID,
				"ticket_number": ticket.TicketNumber,
				"tier":          tier + 1,
			}); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				log.WithField("discord_id", ticket.DiscordID).Warn("Lottery winner no longer exists, skipping prize")
				continue
			}
			return nil, fmt.Errorf("failed to pay ticket %d: %w", ticket.ID, err)
		}
		if err := s.lotteryRepo.SetTicketPrize(ctx, ticket.ID, prize); err != nil {
			return nil, fmt.Errorf("failed to mark ticket %d: %w", ticket.ID, err)
		}
		ticket.Prize = &prize

		result.Winners = append(result.Winners, &models.LotteryWinner{Ticket: ticket, Tier: tier, Prize: prize})
		draw.WinnerCount++
		draw.TotalPaid += prize
	}

	if err := s.lotteryRepo.CreateDraw(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to store draw: %w", err)
	}

	s.eventPublisher.Publish(events.LotteryDrawnEvent{
		DrawDate:       drawDate.Format(time.DateOnly),
		WinningNumbers: numbers,
		WinnerCount:    draw.WinnerCount,
		TotalPaid:      draw.TotalPaid,
	})

	log.WithFields(log.Fields{
		"draw_date":    drawDate.Format(time.DateOnly),
		"winner_count": draw.WinnerCount,
		"total_paid":   draw.TotalPaid,
	}).Info("Lottery draw conducted")

	return result, nil
}

// GetLatestDraw returns the most recent completed draw, nil if none
func (s *lotteryService) GetLatestDraw(ctx context.Context) (*models.LotteryDraw, error) {
	draw, err := s.lotteryRepo.GetLatestDraw(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest draw: %w", err)
	}
	return draw, nil
}

// pickWinningNumbers samples one distinct number per prize tier from 000001-999999
func (s *lotteryService) pickWinningNumbers() []string {
	seen := make(map[int]bool, len(LotteryPrizes))
	numbers := make([]string, 0, len(LotteryPrizes))
	for len(numbers) < len(LotteryPrizes) {
		n := s.rand.IntN(lotteryNumberSpace) + 1
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, fmt.Sprintf("%06d", n))
	}
	return numbers
}
