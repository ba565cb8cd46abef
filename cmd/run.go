package cmd

import (
	"context"
	"fmt"
	"time"

	"elaina/bot"
	"elaina/config"
	"elaina/database"
	"elaina/events"
	bc "elaina/game/baucua"
	bj "elaina/game/blackjack"
	"elaina/infrastructure"
	"elaina/infrastructure/observability"
	"elaina/infrastructure/weather"
	"elaina/logging"
	"elaina/repository"
	"elaina/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()

	logCloser, err := logging.Setup(logging.DefaultConfig(cfg.LogLevel, cfg.LogFile, cfg.Environment))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logCloser.Close()

	log.WithField("environment", cfg.Environment).Info("Starting elaina bot")

	lotteryLocation, err := time.LoadLocation(cfg.LotteryTimezone)
	if err != nil {
		return fmt.Errorf("invalid lottery timezone %q: %w", cfg.LotteryTimezone, err)
	}

	// Initialize database connection
	databaseURL := cfg.GetDatabaseURL()
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to flush metrics")
		}
	}()

	// Event bus and unit of work factory
	eventBus := events.NewBus()
	metrics.SubscribeTo(eventBus)
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Optional off-process event forwarding
	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		if err := natsClient.EnsureEventStream(); err != nil {
			return fmt.Errorf("failed to ensure NATS event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper()).SubscribeTo(eventBus)
	}

	// Blackjack sessions live in memory and are lost on restart
	manager := bj.NewManager(service.NewBlackjackWallet(uowFactory), bj.Options{
		DealerDelay: bj.DefaultDealerDelay,
	})
	if err := metrics.ObserveActiveSessions(manager.ActiveCount); err != nil {
		return err
	}

	table := bc.NewTable(service.NewBauCuaWallet(uowFactory), bc.Options{})
	if err := metrics.ObserveOpenRounds(table.OpenCount); err != nil {
		return err
	}

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, lotteryLocation)

	// Initialize Discord bot
	botConfig := bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.GuildID,
		AdminID:         cfg.AdminUID,
		StartingBalance: cfg.StartingBalance,
		LogChannelID:    cfg.LogChannelID,
		LotteryLocation: lotteryLocation,
		LotteryDrawCron: cfg.LotteryDrawCron,
	}
	discordBot, err := bot.New(botConfig, uowFactory, manager, table, weatherClient, eventBus, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Wait for context cancellation
	log.Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	return nil
}
