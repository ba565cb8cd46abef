package service

import (
	"context"
	"time"

	"elaina/events"
	"elaina/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID, nil if absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error)

	// Upsert merges the non-nil fields of update into the user record, creating it if needed
	Upsert(ctx context.Context, discordID int64, update *models.UserUpdate) (*models.User, error)

	// Delete removes a user record
	Delete(ctx context.Context, discordID int64) error

	// AddBalance adds to a user's balance atomically and returns the new balance
	AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// DeductBalance deducts from a user's balance atomically, failing if insufficient funds
	DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error)

	// GetTopByBalance returns the richest users, highest first
	GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// GameRoundRepository stores settled game rounds
type GameRoundRepository interface {
	Create(ctx context.Context, round *models.GameRound) error
	GetStats(ctx context.Context, discordID int64) ([]*models.GameStats, error)
}

// LotteryRepository defines lottery ticket and draw storage
type LotteryRepository interface {
	CreateTicket(ctx context.Context, ticket *models.LotteryTicket) error
	CountTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) (int, error)
	GetTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) ([]*models.LotteryTicket, error)
	GetTicketsByNumbers(ctx context.Context, drawDate time.Time, numbers []string) ([]*models.LotteryTicket, error)
	SetTicketPrize(ctx context.Context, ticketID int64, prize int64) error
	CreateDraw(ctx context.Context, draw *models.LotteryDraw) error
	GetDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDraw, error)
	GetLatestDraw(ctx context.Context) (*models.LotteryDraw, error)
}

// WarningRepository stores moderation warnings for the unit of work's guild
type WarningRepository interface {
	Create(ctx context.Context, warning *models.Warning) error
	ListByMember(ctx context.Context, discordID int64, limit int) ([]*models.Warning, error)
	CountByMember(ctx context.Context, discordID int64) (int, error)
}

// EmbedRepository stores named embed templates for the unit of work's guild.
// Names are matched case-insensitively.
type EmbedRepository interface {
	Create(ctx context.Context, embed *models.StoredEmbed) error
	GetByName(ctx context.Context, name string) (*models.StoredEmbed, error)
	Update(ctx context.Context, embed *models.StoredEmbed) error
	Delete(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*models.StoredEmbed, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	GameRoundRepository() GameRoundRepository
	LotteryRepository() LotteryRepository
	WarningRepository() WarningRepository
	EmbedRepository() EmbedRepository
	GuildSettingsRepository() GuildSettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// Transfer moves amount from one user to another, recording both sides
	Transfer(ctx context.Context, fromDiscordID, toDiscordID int64, amount int64) (*models.TransferResult, error)

	// AdjustBalance applies an admin correction and records it
	AdjustBalance(ctx context.Context, discordID int64, delta int64, reason string) (*models.User, error)

	// SetBanned flags or unflags a user from playing games
	SetBanned(ctx context.Context, discordID int64, banned bool) (*models.User, error)

	// GetLeaderboard returns the richest users
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
}

// StatsService reads aggregated player statistics
type StatsService interface {
	// GetScoreboard returns the richest users ranked by balance
	GetScoreboard(ctx context.Context, guildID int64, limit int) ([]*models.ScoreboardEntry, error)

	// GetUserStats returns per-game results and the latest ledger entries for a user
	GetUserStats(ctx context.Context, guildID int64, discordID int64) (*models.UserStats, error)
}

// GameService runs the instant games (coinflip and tai xiu)
type GameService interface {
	Coinflip(ctx context.Context, req *CoinflipRequest) (*models.GameResult, error)
	TaiXiu(ctx context.Context, req *TaiXiuRequest) (*models.GameResult, error)
}

// LotteryService defines lottery operations
type LotteryService interface {
	// BuyTicket purchases number for the draw that is open at now
	BuyTicket(ctx context.Context, discordID int64, number string, now time.Time) (*models.LotteryPurchase, error)

	// GetTickets returns the user's tickets for the draw that is open at now
	GetTickets(ctx context.Context, discordID int64, now time.Time) ([]*models.LotteryTicket, error)

	// ConductDraw picks the winning numbers for drawDate and pays every matching ticket
	ConductDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDrawResult, error)

	// GetLatestDraw returns the most recent completed draw, nil if none
	GetLatestDraw(ctx context.Context) (*models.LotteryDraw, error)
}

// ModerationService records warnings and moderation events
type ModerationService interface {
	Warn(ctx context.Context, targetID, moderatorID int64, reason string) (*models.Warning, int, error)
	ListWarnings(ctx context.Context, targetID int64, limit int) ([]*models.Warning, error)
	RecordAction(ctx context.Context, action string, targetID, moderatorID int64, reason string)
}

// EmbedService manages a guild's stored embeds
type EmbedService interface {
	Create(ctx context.Context, name string) (*models.StoredEmbed, error)
	Get(ctx context.Context, name string) (*models.StoredEmbed, error)
	Save(ctx context.Context, embed *models.StoredEmbed) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*models.StoredEmbed, error)

	// Referenced resolves the {embed:name} references in text, skipping unknown names
	Referenced(ctx context.Context, text string) ([]*models.StoredEmbed, error)
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones if not found
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGreetChannel sets the channel greetings are posted to
	UpdateGreetChannel(ctx context.Context, guildID int64, channelID int64) error

	// UpdateGreetMessage sets the greeting template
	UpdateGreetMessage(ctx context.Context, guildID int64, message string) error

	// ClearGreeting removes the greeting configuration
	ClearGreeting(ctx context.Context, guildID int64) error

	// UpdateLogChannel sets the channel game logs and lottery results go to
	UpdateLogChannel(ctx context.Context, guildID int64, channelID *int64) error
}
