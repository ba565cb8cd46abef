package models

import "time"

// GameType identifies which game produced a round
type GameType string

const (
	GameTypeBlackjack GameType = "blackjack"
	GameTypeCoinflip  GameType = "coinflip"
	GameTypeTaiXiu    GameType = "taixiu"
	GameTypeBauCua    GameType = "baucua"
)

// GameRound is the settled record of a single game
type GameRound struct {
	ID        int64          `db:"id"`
	Game      GameType       `db:"game"`
	DiscordID int64          `db:"discord_id"`
	GuildID   int64          `db:"guild_id"`
	Wager     int64          `db:"wager"`
	Payout    int64          `db:"payout"`
	Outcome   string         `db:"outcome"`
	Details   map[string]any `db:"details"`
	CreatedAt time.Time      `db:"created_at"`
}

// Net returns the balance delta of the round from the player's side
func (r *GameRound) Net() int64 {
	return r.Payout - r.Wager
}

// GameStats aggregates a user's rounds for one game
type GameStats struct {
	Game        GameType
	RoundsTotal int
	RoundsWon   int
	TotalWager  int64
	TotalPayout int64
}
