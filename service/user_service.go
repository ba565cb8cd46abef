package service

import (
	"context"
	"fmt"

	"elaina/models"
)

// DefaultStartingBalance is used when no starting balance is configured
const DefaultStartingBalance int64 = 10000

// userService implements the UserService interface
type userService struct {
	userRepo           UserRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventPublisher     EventPublisher
	startingBalance    int64
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, eventPublisher EventPublisher, startingBalance int64) UserService {
	if startingBalance < 0 {
		startingBalance = DefaultStartingBalance
	}
	return &userService{
		userRepo:           userRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		startingBalance:    startingBalance,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
func (s *userService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user != nil {
		if username != "" && user.Username != username {
			return s.userRepo.Upsert(ctx, discordID, &models.UserUpdate{Username: &username})
		}
		return user, nil
	}

	user, err = s.userRepo.Create(ctx, discordID, username, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return user, nil
}

// Transfer moves amount from one user to another, recording both sides
func (s *userService) Transfer(ctx context.Context, fromDiscordID, toDiscordID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromDiscordID == toDiscordID {
		return nil, ErrSelfTransfer
	}

	recipient, err := s.userRepo.GetByDiscordID(ctx, toDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, ErrUserNotFound
	}

	senderBalance, err := debitWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
		fromDiscordID, 0, amount, models.TransactionTypeTransferOut, map[string]any{
			"recipient_discord_id": toDiscordID,
			"recipient_username":   recipient.Username,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}

	recipientBalance, err := creditWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
		toDiscordID, 0, amount, models.TransactionTypeTransferIn, map[string]any{
			"sender_discord_id": fromDiscordID,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	return &models.TransferResult{
		Amount:            amount,
		SenderBalance:     senderBalance,
		RecipientBalance:  recipientBalance,
		RecipientUsername: recipient.Username,
	}, nil
}

// AdjustBalance applies an admin correction and records it
func (s *userService) AdjustBalance(ctx context.Context, discordID int64, delta int64, reason string) (*models.User, error) {
	if delta == 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	metadata := map[string]any{"reason": reason}
	if delta > 0 {
		user.Balance, err = creditWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
			discordID, 0, delta, models.TransactionTypeAdmin, metadata)
	} else {
		user.Balance, err = debitWithHistory(ctx, s.userRepo, s.balanceHistoryRepo, s.eventPublisher,
			discordID, 0, -delta, models.TransactionTypeAdmin, metadata)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return user, nil
}

// SetBanned flags or unflags a user from playing games
func (s *userService) SetBanned(ctx context.Context, discordID int64, banned bool) (*models.User, error) {
	user, err := s.userRepo.Upsert(ctx, discordID, &models.UserUpdate{Banned: &banned})
	if err != nil {
		return nil, fmt.Errorf("failed to update ban flag: %w", err)
	}
	return user, nil
}

// GetLeaderboard returns the richest users
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	users, err := s.userRepo.GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}
