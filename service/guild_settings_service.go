package service

import (
	"context"
	"fmt"

	"elaina/models"
)

// guildSettingsService implements the GuildSettingsService interface.
// Each call runs in its own unit of work.
type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}

	// Commit in case the defaults were just inserted
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// UpdateGreetChannel sets the channel greetings are posted to
func (s *guildSettingsService) UpdateGreetChannel(ctx context.Context, guildID int64, channelID int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.GreetChannelID = &channelID
	})
}

// UpdateGreetMessage sets the greeting template
func (s *guildSettingsService) UpdateGreetMessage(ctx context.Context, guildID int64, message string) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.GreetMessage = &message
	})
}

// ClearGreeting removes the greeting configuration
func (s *guildSettingsService) ClearGreeting(ctx context.Context, guildID int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.GreetChannelID = nil
		settings.GreetMessage = nil
	})
}

// UpdateLogChannel sets the channel game logs and lottery results go to, nil to disable
func (s *guildSettingsService) UpdateLogChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.LogChannelID = channelID
	})
}

func (s *guildSettingsService) update(ctx context.Context, guildID int64, apply func(*models.GuildSettings)) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	apply(settings)

	if err := uow.GuildSettingsRepository().UpdateGuildSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
