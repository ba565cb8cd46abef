package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalance(-balance)
	}

	str := fmt.Sprintf("%d", balance)
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatCoins formats an amount followed by the currency name
func FormatCoins(amount int64) string {
	return FormatBalance(amount) + " " + Currency
}

// FormatSigned formats a balance change with an explicit sign
func FormatSigned(delta int64) string {
	if delta > 0 {
		return "+" + FormatBalance(delta)
	}
	return FormatBalance(delta)
}

// FormatBalanceCompact formats a balance amount in compact form (e.g. 100k, 1.5M)
func FormatBalanceCompact(balance int64) string {
	if balance < 0 {
		return "-" + FormatBalanceCompact(-balance)
	}

	units := []struct {
		size   int64
		suffix string
	}{
		{1_000_000_000, "B"},
		{1_000_000, "M"},
		{1_000, "k"},
	}
	for _, u := range units {
		if balance < u.size {
			continue
		}
		value := float64(balance) / float64(u.size)
		if value == float64(int64(value)) {
			return fmt.Sprintf("%.0f%s", value, u.suffix)
		}
		return fmt.Sprintf("%.1f%s", value, u.suffix)
	}
	return fmt.Sprintf("%d", balance)
}

// FormatDuration renders a duration as its two largest non-zero units, e.g. "2h 5m"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}

	parts := []struct {
		size  time.Duration
		label string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	var out []string
	for _, p := range parts {
		if d >= p.size {
			out = append(out, fmt.Sprintf("%d%s", d/p.size, p.label))
			d %= p.size
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.Join(out, " ")
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// Truncate shortens s to at most n runes, ending with an ellipsis when cut
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
