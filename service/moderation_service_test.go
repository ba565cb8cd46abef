package service

import (
	"context"
	"testing"
	"time"

	"elaina/events"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseModerationDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr error
	}{
		{"30s", 30 * time.Second, nil},
		{"5m", 5 * time.Minute, nil},
		{"2H", 2 * time.Hour, nil},
		{"3d", 72 * time.Hour, nil},
		{"1w", 7 * 24 * time.Hour, nil},
		{" 10m ", 10 * time.Minute, nil},
		{"8d", 0, ErrDurationTooLong},
		{"2w", 0, ErrDurationTooLong},
		{"169h", 0, ErrDurationTooLong},
		{"0m", 0, ErrInvalidDuration},
		{"-5m", 0, ErrInvalidDuration},
		{"5y", 0, ErrInvalidDuration},
		{"m", 0, ErrInvalidDuration},
		{"", 0, ErrInvalidDuration},
		{"abc", 0, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModerationDuration(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBanDeleteDays(t *testing.T) {
	assert.Equal(t, 0, BanDeleteDays(0))
	assert.Equal(t, 0, BanDeleteDays(23*time.Hour))
	assert.Equal(t, 1, BanDeleteDays(36*time.Hour))
	assert.Equal(t, 7, BanDeleteDays(7*24*time.Hour))
	assert.Equal(t, 7, BanDeleteDays(30*24*time.Hour))
}

func TestModerationReason(t *testing.T) {
	assert.Equal(t, DefaultModerationReason, ModerationReason(""))
	assert.Equal(t, DefaultModerationReason, ModerationReason("   "))
	assert.Equal(t, "spam", ModerationReason(" spam "))
}

func TestCheckModeration(t *testing.T) {
	base := ModerationCheck{
		InvokerID:      1,
		BotID:          2,
		OwnerID:        3,
		TargetID:       4,
		InvokerHasPerm: true,
		BotHasPerm:     true,
		TargetIsMember: true,
		InvokerTopRole: 10,
		BotTopRole:     20,
		TargetTopRole:  5,
	}

	tests := []struct {
		name    string
		modify  func(c *ModerationCheck)
		wantErr error
	}{
		{"allowed", func(c *ModerationCheck) {}, nil},
		{"invoker lacks permission", func(c *ModerationCheck) { c.InvokerHasPerm = false }, ErrMissingPermission},
		{"bot lacks permission", func(c *ModerationCheck) { c.BotHasPerm = false }, ErrBotMissingPermission},
		{"self", func(c *ModerationCheck) { c.TargetID = c.InvokerID }, ErrTargetIsSelf},
		{"owner", func(c *ModerationCheck) { c.TargetID = c.OwnerID }, ErrTargetIsOwner},
		{"bot", func(c *ModerationCheck) { c.TargetID = c.BotID }, ErrTargetIsBot},
		{"equal roles", func(c *ModerationCheck) { c.TargetTopRole = c.InvokerTopRole }, ErrInvokerRoleTooLow},
		{"target above bot", func(c *ModerationCheck) {
			c.InvokerTopRole = 30
			c.TargetTopRole = 25
		}, ErrBotRoleTooLow},
		{"owner outranks anyone", func(c *ModerationCheck) {
			c.InvokerID = c.OwnerID
			c.InvokerTopRole = 0
		}, nil},
		{"target left guild", func(c *ModerationCheck) {
			c.TargetIsMember = false
			c.TargetTopRole = 100
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.modify(&c)
			err := CheckModeration(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestModerationService_Warn(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := NewModerationService(mocks.WarningRepo, mocks.EventPublisher, TestGuildID)

	mocks.WarningRepo.On("Create", ctx, mock.MatchedBy(func(w *models.Warning) bool {
		return w.GuildID == TestGuildID && w.DiscordID == TestUser1ID && w.ModeratorID == TestModeratorID && w.Reason == DefaultModerationReason
	})).Return(nil)
	mocks.WarningRepo.On("CountByMember", ctx, int64(TestUser1ID)).Return(3, nil)
	mocks.ExpectAnyPublish()

	warning, count, err := service.Warn(ctx, TestUser1ID, TestModeratorID, "")

	require.NoError(t, err)
	assert.Equal(t, DefaultModerationReason, warning.Reason)
	assert.Equal(t, 3, count)
	mocks.AssertAllExpectations(t)

	actions := publishedOfType[events.ModerationActionEvent](mocks.EventPublisher)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionWarn, actions[0].Action)
	assert.Equal(t, int64(TestGuildID), actions[0].GuildID)
}
