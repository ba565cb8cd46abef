package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial         TransactionType = "initial"
	TransactionTypeAdmin           TransactionType = "admin_adjustment"
	TransactionTypeTransferIn      TransactionType = "transfer_in"
	TransactionTypeTransferOut     TransactionType = "transfer_out"
	TransactionTypeBlackjackBet    TransactionType = "blackjack_bet"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeBlackjackRefund TransactionType = "blackjack_refund"
	TransactionTypeCoinflipWin     TransactionType = "coinflip_win"
	TransactionTypeCoinflipLoss    TransactionType = "coinflip_loss"
	TransactionTypeTaiXiuBet       TransactionType = "taixiu_bet"
	TransactionTypeTaiXiuPayout    TransactionType = "taixiu_payout"
	TransactionTypeBauCuaBet       TransactionType = "baucua_bet"
	TransactionTypeBauCuaPayout    TransactionType = "baucua_payout"
	TransactionTypeBauCuaRefund    TransactionType = "baucua_refund"
	TransactionTypeLotteryTicket   TransactionType = "lottery_ticket"
	TransactionTypeLotteryPrize    TransactionType = "lottery_prize"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeGameRound     RelatedType = "game_round"
	RelatedTypeLotteryTicket RelatedType = "lottery_ticket"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *int64          `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}
