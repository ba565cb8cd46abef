package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{250000, "250,000"},
		{1234567, "1,234,567"},
		{-1500, "-1,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBalance(tt.input))
	}
}

func TestFormatBalanceCompact(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{999, "999"},
		{1000, "1k"},
		{1500, "1.5k"},
		{10_000_000, "10M"},
		{500_000_000, "500M"},
		{1_250_000_000, "1.2B"},
		{-40000, "-40k"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBalanceCompact(tt.input), "input %d", tt.input)
	}
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+1,000", FormatSigned(1000))
	assert.Equal(t, "-500", FormatSigned(-500))
	assert.Equal(t, "0", FormatSigned(0))
}

func TestFormatCoins(t *testing.T) {
	assert.Equal(t, "12,345 ecoin", FormatCoins(12345))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute + 10*time.Second, "2h 5m"},
		{26 * time.Hour, "1d 2h"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.input))
	}
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:R>", FormatDiscordTimestamp(ts, "R"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Nguyễn…", Truncate("Nguyễn Văn A", 7))
}
