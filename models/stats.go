package models

// UserStats is everything /stats shows for one user
type UserStats struct {
	User          *User
	Games         []*GameStats
	RecentHistory []*BalanceHistory
	NetProfit     int64
	WinPercentage float64
}

// ScoreboardEntry is one ranked row of the leaderboard
type ScoreboardEntry struct {
	Rank      int
	DiscordID int64
	Username  string
	Balance   int64
}

// WinPercentage returns the share of rounds won, 0 when nothing was played
func (s *GameStats) WinPercentage() float64 {
	if s.RoundsTotal == 0 {
		return 0
	}
	return float64(s.RoundsWon) / float64(s.RoundsTotal) * 100
}
