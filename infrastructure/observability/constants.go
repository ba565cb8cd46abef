package observability

// Metric name prefixes
const (
	MetricPrefix = "elaina"
)

// Metric names
const (
	// Discord metrics
	CommandsTotal = MetricPrefix + ".commands.total"

	// Game metrics
	GamesSettledTotal = MetricPrefix + ".games.settled_total"
	GameWageredTotal  = MetricPrefix + ".games.wagered_total"
	GamePayoutTotal   = MetricPrefix + ".games.payout_total"
	BlackjackActive   = MetricPrefix + ".blackjack.sessions_active"
	BauCuaOpen        = MetricPrefix + ".baucua.rounds_open"

	// Moderation metrics
	ModerationActionsTotal = MetricPrefix + ".moderation.actions_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Balance metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelCommand   = "command"
	LabelGame      = "game"
	LabelOutcome   = "outcome"
	LabelAction    = "action"
)

// Exporter types accepted in OTEL_EXPORTER_TYPE
const (
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterNone    = "none"
)
