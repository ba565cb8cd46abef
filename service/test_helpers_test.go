package service

import (
	"testing"

	"elaina/events"

	"github.com/stretchr/testify/mock"
)

const (
	TestUser1ID        = 111111
	TestUser2ID        = 222222
	TestModeratorID    = 999999
	TestGuildID        = 555555
	TestChannelID      = 789012
	TestInitialBalance = 100000
)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	UserRepo           *MockUserRepository
	BalanceHistoryRepo *MockBalanceHistoryRepository
	GameRoundRepo      *MockGameRoundRepository
	LotteryRepo        *MockLotteryRepository
	WarningRepo        *MockWarningRepository
	EmbedRepo          *MockEmbedRepository
	GuildSettingsRepo  *MockGuildSettingsRepository
	EventPublisher     *MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:           new(MockUserRepository),
		BalanceHistoryRepo: new(MockBalanceHistoryRepository),
		GameRoundRepo:      new(MockGameRoundRepository),
		LotteryRepo:        new(MockLotteryRepository),
		WarningRepo:        new(MockWarningRepository),
		EmbedRepo:          new(MockEmbedRepository),
		GuildSettingsRepo:  new(MockGuildSettingsRepository),
		EventPublisher:     new(MockEventPublisher),
	}
}

// UnitOfWork wires the mocks into a MockUnitOfWork
func (m *TestMocks) UnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		UserRepo:           m.UserRepo,
		BalanceHistoryRepo: m.BalanceHistoryRepo,
		GameRoundRepo:      m.GameRoundRepo,
		LotteryRepo:        m.LotteryRepo,
		WarningRepo:        m.WarningRepo,
		EmbedRepo:          m.EmbedRepo,
		GuildSettingsRepo:  m.GuildSettingsRepo,
		Publisher:          m.EventPublisher,
	}
}

// ExpectAnyPublish accepts any number of published events
func (m *TestMocks) ExpectAnyPublish() {
	m.EventPublisher.On("Publish", mock.Anything).Return()
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.GameRoundRepo.AssertExpectations(t)
	m.LotteryRepo.AssertExpectations(t)
	m.WarningRepo.AssertExpectations(t)
	m.EmbedRepo.AssertExpectations(t)
	m.GuildSettingsRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// publishedOfType returns the events of type T handed to the publisher
func publishedOfType[T events.Event](m *MockEventPublisher) []T {
	var out []T
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		if e, ok := call.Arguments.Get(0).(T); ok {
			out = append(out, e)
		}
	}
	return out
}
