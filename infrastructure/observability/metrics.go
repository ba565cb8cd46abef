package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elaina/config"
	"elaina/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages the bot's OpenTelemetry instruments
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	reader        sdkmetric.Reader
	initialized   bool
	mu            sync.RWMutex

	commandsCounter              metric.Int64Counter
	gamesSettledCounter          metric.Int64Counter
	gameWageredCounter           metric.Int64Counter
	gamePayoutCounter            metric.Int64Counter
	moderationActionsCounter     metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	balanceTransactionsCounter   metric.Int64Counter
	activeSessionsGauge          metric.Int64ObservableGauge
	openRoundsGauge              metric.Int64ObservableGauge
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the meter provider and the exporter named in the config
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var reader sdkmetric.Reader
	switch mp.config.OTelExporterType {
	case ExporterConsole:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.Info("Using console metric exporter")

	case ExporterOTLP:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case ExporterNone:
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	return mp.start(reader)
}

// InitializeWithReader wires instruments to a caller supplied reader, used with a manual reader in tests
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.start(reader)
}

func (mp *MetricsProvider) periodicReader(exporter sdkmetric.Exporter) sdkmetric.Reader {
	return sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
}

// start builds the meter provider around reader. Caller holds mp.mu.
func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.reader = reader
	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter(MetricPrefix)

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.commandsCounter, CommandsTotal, "Total number of slash commands handled", "1"},
		{&mp.gamesSettledCounter, GamesSettledTotal, "Total number of settled game rounds", "1"},
		{&mp.gameWageredCounter, GameWageredTotal, "Total amount wagered", "{coin}"},
		{&mp.gamePayoutCounter, GamePayoutTotal, "Total amount paid out by games", "{coin}"},
		{&mp.moderationActionsCounter, ModerationActionsTotal, "Total number of moderation actions", "1"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published", "1"},
		{&mp.balanceTransactionsCounter, BalanceTransactionsTotal, "Total number of balance transactions", "1"},
	}
	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(
			c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	mp.activeSessionsGauge, err = mp.meter.Int64ObservableGauge(
		BlackjackActive,
		metric.WithDescription("Current number of blackjack sessions in progress"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active sessions gauge: %w", err)
	}

	mp.openRoundsGauge, err = mp.meter.Int64ObservableGauge(
		BauCuaOpen,
		metric.WithDescription("Current number of bau cua rounds taking bets"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create open rounds gauge: %w", err)
	}

	return nil
}

// ObserveActiveSessions reports count() as the active blackjack session gauge on every collection
func (mp *MetricsProvider) ObserveActiveSessions(count func() int) error {
	if !mp.isEnabled() {
		return nil
	}

	_, err := mp.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(mp.activeSessionsGauge, int64(count()))
		return nil
	}, mp.activeSessionsGauge)
	if err != nil {
		return fmt.Errorf("failed to register active sessions callback: %w", err)
	}
	return nil
}

// ObserveOpenRounds reports count() as the open bầu cua round gauge on every collection
func (mp *MetricsProvider) ObserveOpenRounds(count func() int) error {
	if !mp.isEnabled() {
		return nil
	}

	_, err := mp.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(mp.openRoundsGauge, int64(count()))
		return nil
	}, mp.openRoundsGauge)
	if err != nil {
		return fmt.Errorf("failed to register open rounds callback: %w", err)
	}
	return nil
}

// SubscribeTo records game, balance and moderation metrics for events committed on bus
func (mp *MetricsProvider) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGameSettled, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GameSettledEvent); ok {
			mp.RecordGameSettled(string(e.Game), e.Outcome, e.Wager, e.Payout)
		}
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			mp.RecordBalanceTransaction(string(e.TransactionType))
		}
	})
	bus.Subscribe(events.EventTypeModerationAction, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ModerationActionEvent); ok {
			mp.RecordModerationAction(e.Action)
		}
	})
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordCommand records a handled slash command
func (mp *MetricsProvider) RecordCommand(command string) {
	if !mp.isEnabled() {
		return
	}

	mp.commandsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelCommand, command),
		),
	)
}

// RecordGameSettled records a finished round with its wager and payout
func (mp *MetricsProvider) RecordGameSettled(game, outcome string, wager, payout int64) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	gameAttr := attribute.String(LabelGame, game)
	mp.gamesSettledCounter.Add(ctx, 1,
		metric.WithAttributes(gameAttr, attribute.String(LabelOutcome, outcome)),
	)
	mp.gameWageredCounter.Add(ctx, wager, metric.WithAttributes(gameAttr))
	if payout > 0 {
		mp.gamePayoutCounter.Add(ctx, payout, metric.WithAttributes(gameAttr))
	}
}

// RecordModerationAction records a moderation command that went through
func (mp *MetricsProvider) RecordModerationAction(action string) {
	if !mp.isEnabled() {
		return
	}

	mp.moderationActionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelAction, action),
		),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
		),
	)
}

// isEnabled reports whether instruments exist to record into
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider, nil before InitializeGlobalMetrics
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
