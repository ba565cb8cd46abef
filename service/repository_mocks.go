package service

import (
	"context"
	"time"

	"elaina/events"
	"elaina/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, discordID int64, update *models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, discordID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockGameRoundRepository is a mock implementation of GameRoundRepository
type MockGameRoundRepository struct {
	mock.Mock
}

func (m *MockGameRoundRepository) Create(ctx context.Context, round *models.GameRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockGameRoundRepository) GetStats(ctx context.Context, discordID int64) ([]*models.GameStats, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameStats), args.Error(1)
}

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) CreateTicket(ctx context.Context, ticket *models.LotteryTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockLotteryRepository) CountTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) (int, error) {
	args := m.Called(ctx, drawDate, discordID)
	return args.Int(0), args.Error(1)
}

func (m *MockLotteryRepository) GetTicketsForUser(ctx context.Context, drawDate time.Time, discordID int64) ([]*models.LotteryTicket, error) {
	args := m.Called(ctx, drawDate, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LotteryTicket), args.Error(1)
}

func (m *MockLotteryRepository) GetTicketsByNumbers(ctx context.Context, drawDate time.Time, numbers []string) ([]*models.LotteryTicket, error) {
	args := m.Called(ctx, drawDate, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LotteryTicket), args.Error(1)
}

func (m *MockLotteryRepository) SetTicketPrize(ctx context.Context, ticketID int64, prize int64) error {
	args := m.Called(ctx, ticketID, prize)
	return args.Error(0)
}

func (m *MockLotteryRepository) CreateDraw(ctx context.Context, draw *models.LotteryDraw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDraw, error) {
	args := m.Called(ctx, drawDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LotteryDraw), args.Error(1)
}

func (m *MockLotteryRepository) GetLatestDraw(ctx context.Context) (*models.LotteryDraw, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LotteryDraw), args.Error(1)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	args := m.Called(ctx, warning)
	return args.Error(0)
}

func (m *MockWarningRepository) ListByMember(ctx context.Context, discordID int64, limit int) ([]*models.Warning, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

func (m *MockWarningRepository) CountByMember(ctx context.Context, discordID int64) (int, error) {
	args := m.Called(ctx, discordID)
	return args.Int(0), args.Error(1)
}

// MockEmbedRepository is a mock implementation of EmbedRepository
type MockEmbedRepository struct {
	mock.Mock
}

func (m *MockEmbedRepository) Create(ctx context.Context, embed *models.StoredEmbed) error {
	args := m.Called(ctx, embed)
	return args.Error(0)
}

func (m *MockEmbedRepository) GetByName(ctx context.Context, name string) (*models.StoredEmbed, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredEmbed), args.Error(1)
}

func (m *MockEmbedRepository) Update(ctx context.Context, embed *models.StoredEmbed) error {
	args := m.Called(ctx, embed)
	return args.Error(0)
}

func (m *MockEmbedRepository) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmbedRepository) List(ctx context.Context) ([]*models.StoredEmbed, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StoredEmbed), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever was handed to SetRepositories rather than going through mock.Called.
type MockUnitOfWork struct {
	mock.Mock

	UserRepo           UserRepository
	BalanceHistoryRepo BalanceHistoryRepository
	GameRoundRepo      GameRoundRepository
	LotteryRepo        LotteryRepository
	WarningRepo        WarningRepository
	EmbedRepo          EmbedRepository
	GuildSettingsRepo  GuildSettingsRepository
	Publisher          EventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository                     { return m.UserRepo }
func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository { return m.BalanceHistoryRepo }
func (m *MockUnitOfWork) GameRoundRepository() GameRoundRepository           { return m.GameRoundRepo }
func (m *MockUnitOfWork) LotteryRepository() LotteryRepository               { return m.LotteryRepo }
func (m *MockUnitOfWork) WarningRepository() WarningRepository               { return m.WarningRepo }
func (m *MockUnitOfWork) EmbedRepository() EmbedRepository                   { return m.EmbedRepo }
func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository   { return m.GuildSettingsRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher                           { return m.Publisher }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}
