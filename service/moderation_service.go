package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"elaina/events"
	"elaina/models"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultModerationReason is used when a moderator leaves the reason empty
	DefaultModerationReason = "No reason provided"

	// MaxModerationDuration bounds timeouts and ban message purges
	MaxModerationDuration = 7 * 24 * time.Hour
)

// Moderation actions carried on ModerationActionEvent
const (
	ActionWarn      = "warn"
	ActionTimeout   = "timeout"
	ActionUntimeout = "untimeout"
	ActionKick      = "kick"
	ActionBan       = "ban"
	ActionUnban     = "unban"
)

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseModerationDuration parses values like 30s, 5m, 2h, 1d or 1w
func ParseModerationDuration(input string) (time.Duration, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) < 2 {
		return 0, ErrInvalidDuration
	}

	unit, ok := durationUnits[input[len(input)-1]]
	if !ok {
		return 0, ErrInvalidDuration
	}
	value, err := strconv.ParseInt(input[:len(input)-1], 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidDuration
	}
	if value > int64(MaxModerationDuration/unit) {
		return 0, ErrDurationTooLong
	}
	return time.Duration(value) * unit, nil
}

// BanDeleteDays converts a message purge window to whole days, as the ban API expects
func BanDeleteDays(window time.Duration) int {
	days := int(window / (24 * time.Hour))
	return min(max(days, 0), 7)
}

// ModerationReason trims reason and substitutes the default for an empty one
func ModerationReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return DefaultModerationReason
	}
	return reason
}

// ModerationCheck captures who is acting on whom. Role positions are the
// positions of each member's highest role; higher wins.
type ModerationCheck struct {
	InvokerID      int64
	BotID          int64
	OwnerID        int64
	TargetID       int64
	InvokerHasPerm bool
	BotHasPerm     bool

	// TargetIsMember is false when the target already left the guild,
	// in which case there is no hierarchy to compare.
	TargetIsMember bool
	InvokerTopRole int
	BotTopRole     int
	TargetTopRole  int
}

// CheckModeration returns the first rule the action would break, nil if it may proceed
func CheckModeration(c ModerationCheck) error {
	if !c.InvokerHasPerm {
		return ErrMissingPermission
	}
	if !c.BotHasPerm {
		return ErrBotMissingPermission
	}
	switch c.TargetID {
	case c.InvokerID:
		return ErrTargetIsSelf
	case c.OwnerID:
		return ErrTargetIsOwner
	case c.BotID:
		return ErrTargetIsBot
	}
	if !c.TargetIsMember {
		return nil
	}
	if c.InvokerID != c.OwnerID && c.InvokerTopRole <= c.TargetTopRole {
		return ErrInvokerRoleTooLow
	}
	if c.BotTopRole <= c.TargetTopRole {
		return ErrBotRoleTooLow
	}
	return nil
}

type moderationService struct {
	warningRepo    WarningRepository
	eventPublisher EventPublisher
	guildID        int64
}

// NewModerationService creates a moderation service for one guild
func NewModerationService(warningRepo WarningRepository, eventPublisher EventPublisher, guildID int64) ModerationService {
	return &moderationService{
		warningRepo:    warningRepo,
		eventPublisher: eventPublisher,
		guildID:        guildID,
	}
}

// Warn stores a warning and returns it with the member's total warning count
func (s *moderationService) Warn(ctx context.Context, targetID, moderatorID int64, reason string) (*models.Warning, int, error) {
	warning := &models.Warning{
		GuildID:     s.guildID,
		DiscordID:   targetID,
		ModeratorID: moderatorID,
		Reason:      ModerationReason(reason),
	}
	if err := s.warningRepo.Create(ctx, warning); err != nil {
		return nil, 0, fmt.Errorf("failed to create warning: %w", err)
	}

	count, err := s.warningRepo.CountByMember(ctx, targetID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count warnings: %w", err)
	}

	s.RecordAction(ctx, ActionWarn, targetID, moderatorID, warning.Reason)
	return warning, count, nil
}

// ListWarnings returns the member's most recent warnings
func (s *moderationService) ListWarnings(ctx context.Context, targetID int64, limit int) ([]*models.Warning, error) {
	warnings, err := s.warningRepo.ListByMember(ctx, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	return warnings, nil
}

// RecordAction publishes a moderation event for an action that already happened
func (s *moderationService) RecordAction(ctx context.Context, action string, targetID, moderatorID int64, reason string) {
	log.WithFields(log.Fields{
		"guild_id":     s.guildID,
		"action":       action,
		"target_id":    targetID,
		"moderator_id": moderatorID,
	}).Info("Moderation action")

	s.eventPublisher.Publish(events.ModerationActionEvent{
		GuildID:     s.guildID,
		Action:      action,
		TargetID:    targetID,
		ModeratorID: moderatorID,
		Reason:      reason,
	})
}
