package models

// TransferResult represents the outcome of a transfer (returned to the user)
type TransferResult struct {
	Amount            int64
	SenderBalance     int64
	RecipientBalance  int64
	RecipientUsername string
}

// GameResult is what an instant game hands back to the presentation layer
type GameResult struct {
	Round      *GameRound
	Won        bool
	NewBalance int64
}

// LotteryPurchase is the outcome of buying one ticket
type LotteryPurchase struct {
	Ticket       *LotteryTicket
	TicketsOwned int
	NextPrice    int64
	NewBalance   int64
}

// LotteryDrawResult summarises a completed draw
type LotteryDrawResult struct {
	Draw    *LotteryDraw
	Winners []*LotteryWinner
}
