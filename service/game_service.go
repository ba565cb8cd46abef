package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"elaina/events"
	"elaina/game"
	"elaina/models"
)

const (
	CoinHeads = "heads"
	CoinTails = "tails"

	TaiXiuTai = "tai"
	TaiXiuXiu = "xiu"

	maxDiceRolls = 10000
)

var ErrInvalidPick = errors.New("invalid pick")

// CoinflipRequest is a single coinflip bet
type CoinflipRequest struct {
	DiscordID int64
	GuildID   int64
	ChannelID int64
	Pick      string
	WagerSpec string
}

// TaiXiuRequest is a single tai xiu bet
type TaiXiuRequest struct {
	DiscordID int64
	GuildID   int64
	ChannelID int64
	Pick      string
	WagerSpec string
}

type gameService struct {
	userRepo           UserRepository
	balanceHistoryRepo BalanceHistoryRepository
	gameRoundRepo      GameRoundRepository
	eventPublisher     EventPublisher
	rand               game.Rand
}

// NewGameService creates the instant-game service. A nil rand uses the process generator.
func NewGameService(userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, gameRoundRepo GameRoundRepository, eventPublisher EventPublisher, rand game.Rand) GameService {
	if rand == nil {
		rand = game.DefaultRand
	}
	return &gameService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		gameRoundRepo:      gameRoundRepo,
		eventPublisher:     eventPublisher,
		rand:               rand,
	}
}

// Coinflip wins or loses the wager on a fair coin
func (s *gameService) Coinflip(ctx context.Context, req *CoinflipRequest) (*models.GameResult, error) {
	pick := strings.ToLower(req.Pick)
	if pick != CoinHeads && pick != CoinTails {
		return nil, ErrInvalidPick
	}

	user, err := s.playableUser(ctx, req.DiscordID)
	if err != nil {
		return nil, err
	}

	wager, err := game.ResolveWagerClamped(req.WagerSpec, user.Balance, game.MaxWager)
	if err != nil {
		return nil, err
	}

	side := CoinHeads
	if s.rand.IntN(2) == 1 {
		side = CoinTails
	}
	won := side == pick

	round := &models.GameRound{
		Game:      models.GameTypeCoinflip,
		DiscordID: req.DiscordID,
		GuildID:   req.GuildID,
		Wager:     wager,
		Outcome:   outcomeLabel(won),
		Details:   map[string]any{"pick": pick, "side": side},
	}
	if won {
		round.Payout = 2 * wager
	}
	if err := s.gameRoundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to record coinflip: %w", err)
	}

	metadata := map[string]any{"pick": pick, "side": side}
	var newBalance int64
	if won {
		newBalance, err = creditWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
			req.DiscordID, req.GuildID, wager, models.TransactionTypeCoinflipWin, metadata)
	} else {
		newBalance, err = debitWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
			req.DiscordID, req.GuildID, wager, models.TransactionTypeCoinflipLoss, metadata)
	}
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, game.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to settle coinflip: %w", err)
	}

	s.publishSettled(round, req.ChannelID, fmt.Sprintf("picked %s, coin landed %s", pick, side))

	return &models.GameResult{Round: round, Won: won, NewBalance: newBalance}, nil
}

// TaiXiu debits the wager, rolls three dice and pays double on a correct call
func (s *gameService) TaiXiu(ctx context.Context, req *TaiXiuRequest) (*models.GameResult, error) {
	pick := strings.ToLower(req.Pick)
	if pick != TaiXiuTai && pick != TaiXiuXiu {
		return nil, ErrInvalidPick
	}

	user, err := s.playableUser(ctx, req.DiscordID)
	if err != nil {
		return nil, err
	}

	wager, err := game.ResolveWagerStrict(req.WagerSpec, user.Balance, game.MaxWager)
	if err != nil {
		return nil, err
	}

	newBalance, err := debitWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
		req.DiscordID, req.GuildID, wager, models.TransactionTypeTaiXiuBet, map[string]any{"pick": pick})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, game.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit wager: %w", err)
	}

	dice := RollTaiXiu(s.rand)
	total := dice[0] + dice[1] + dice[2]
	result := TaiXiuClass(total)
	won := result == pick

	round := &models.GameRound{
		Game:      models.GameTypeTaiXiu,
		DiscordID: req.DiscordID,
		GuildID:   req.GuildID,
		Wager:     wager,
		Outcome:   outcomeLabel(won),
		Details: map[string]any{
			"pick":   pick,
			"result": result,
			"dice":   dice[:],
			"total":  total,
		},
	}
	if won {
		round.Payout = 2 * wager
	}
	if err := s.gameRoundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to record tai xiu round: %w", err)
	}

	if won {
		related := models.RelatedTypeGameRound
		newBalance, err = s.userRepo.AddBalance(ctx, req.DiscordID, round.Payout)
		if err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
		history := &models.BalanceHistory{
			DiscordID:           req.DiscordID,
			GuildID:             req.GuildID,
			BalanceBefore:       newBalance - round.Payout,
			BalanceAfter:        newBalance,
			ChangeAmount:        round.Payout,
			TransactionType:     models.TransactionTypeTaiXiuPayout,
			TransactionMetadata: map[string]any{"total": total},
			RelatedID:           &round.ID,
			RelatedType:         &related,
		}
		if err := RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
			return nil, err
		}
	}

	s.publishSettled(round, req.ChannelID, fmt.Sprintf("%d-%d-%d = %d (%s)", dice[0], dice[1], dice[2], total, result))

	return &models.GameResult{Round: round, Won: won, NewBalance: newBalance}, nil
}

func (s *gameService) playableUser(ctx context.Context, discordID int64) (*models.User, error) {
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
	return user, nil
}

func (s *gameService) publishSettled(round *models.GameRound, channelID int64, summary string) {
	s.eventPublisher.Publish(events.GameSettledEvent{
		RoundID:   round.ID,
		Game:      round.Game,
		UserID:    round.DiscordID,
		GuildID:   round.GuildID,
		Wager:     round.Wager,
		Payout:    round.Payout,
		Outcome:   round.Outcome,
		Summary:   summary,
		ChannelID: channelID,
	})
}

func outcomeLabel(won bool) string {
	if won {
		return "win"
	}
	return "loss"
}

// TaiXiuClass maps a three-dice total to tai (11-18) or xiu (3-10)
func TaiXiuClass(total int) string {
	if total >= 11 {
		return TaiXiuTai
	}
	return TaiXiuXiu
}

// RollTaiXiu picks tai or xiu with equal odds, then a total inside that class,
// then rolls three dice until they add up to it.
func RollTaiXiu(r game.Rand) [3]int {
	var target int
	if r.IntN(2) == 0 {
		target = 11 + r.IntN(8)
	} else {
		target = 3 + r.IntN(8)
	}

	for i := 0; i < maxDiceRolls; i++ {
		dice := [3]int{r.IntN(6) + 1, r.IntN(6) + 1, r.IntN(6) + 1}
		if dice[0]+dice[1]+dice[2] == target {
			return dice
		}
	}
	return spreadDice(target)
}

// spreadDice builds a deterministic roll summing to target
func spreadDice(target int) [3]int {
	var dice [3]int
	remaining := target
	for i := range dice {
		left := len(dice) - i - 1
		v := min(6, remaining-left)
		dice[i] = v
		remaining -= v
	}
	return dice
}
