package repository

import (
	"context"
	"errors"
	"fmt"

	"elaina/database"
	"elaina/models"
	"elaina/service"

	"github.com/jackc/pgx/v5"
)

const userColumns = `discord_id, username, balance, banned, created_at, updated_at`

// UserRepository implements the UserRepository interface.
// Users and balances are global across guilds.
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.Banned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE discord_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d: %w", discordID, err)
	}
	return user, nil
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, username, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user with discord ID %d: %w", discordID, err)
	}
	return user, nil
}

// Upsert merges the non-nil fields of update into the user record, creating it if needed
func (r *UserRepository) Upsert(ctx context.Context, discordID int64, update *models.UserUpdate) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance, banned)
		VALUES ($1, COALESCE($2::TEXT, ''), COALESCE($3::BIGINT, 0), COALESCE($4::BOOLEAN, FALSE))
		ON CONFLICT (discord_id) DO UPDATE SET
			username = COALESCE($2::TEXT, users.username),
			balance = COALESCE($3::BIGINT, users.balance),
			banned = COALESCE($4::BOOLEAN, users.banned),
			updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, discordID, update.Username, update.Balance, update.Banned))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %d: %w", discordID, err)
	}
	return user, nil
}

// Delete removes a user record along with their history
func (r *UserRepository) Delete(ctx context.Context, discordID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE discord_id = $1`, discordID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", discordID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", service.ErrUserNotFound, discordID)
	}
	return nil
}

// AddBalance adds to a user's balance atomically and returns the new balance
func (r *UserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", service.ErrUserNotFound, discordID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add balance for user %d: %w", discordID, err)
	}
	return balance, nil
}

// DeductBalance deducts from a user's balance atomically, failing if insufficient funds
func (r *UserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to deduct balance for user %d: %w", discordID, err)
	}

	// Nothing updated: either the user is missing or too poor
	err = r.q.QueryRow(ctx, `SELECT balance FROM users WHERE discord_id = $1`, discordID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %d", service.ErrUserNotFound, discordID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check balance for user %d: %w", discordID, err)
	}
	return 0, fmt.Errorf("%w: balance %d, requested %d", service.ErrInsufficientBalance, balance, amount)
}

// GetTopByBalance returns the richest users, highest first
func (r *UserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE balance > 0
		ORDER BY balance DESC, discord_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
