package bot

import (
	"context"
	"fmt"
	"time"

	"elaina/bot/common"
	"elaina/bot/features/afk"
	"elaina/bot/features/balance"
	"elaina/bot/features/baucua"
	"elaina/bot/features/blackjack"
	"elaina/bot/features/chat"
	"elaina/bot/features/coinflip"
	"elaina/bot/features/embeds"
	"elaina/bot/features/gamelog"
	"elaina/bot/features/greet"
	"elaina/bot/features/info"
	"elaina/bot/features/lottery"
	"elaina/bot/features/moderation"
	"elaina/bot/features/ping"
	"elaina/bot/features/settings"
	"elaina/bot/features/stats"
	"elaina/bot/features/taixiu"
	"elaina/bot/features/weather"
	"elaina/events"
	bc "elaina/game/baucua"
	bj "elaina/game/blackjack"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string // empty registers commands globally
	AdminID         int64
	StartingBalance int64
	LogChannelID    string
	LotteryLocation *time.Location
	LotteryDrawCron string
}

// CommandRecorder counts handled slash commands
type CommandRecorder interface {
	RecordCommand(command string)
}

// Bot manages the Discord session and all feature modules
type Bot struct {
	config     Config
	session    *discordgo.Session
	uowFactory service.UnitOfWorkFactory
	metrics    CommandRecorder
	scheduler  *cron.Cron

	// Feature modules
	balance    *balance.Feature
	blackjack  *blackjack.Feature
	baucua     *baucua.Feature
	coinflip   *coinflip.Feature
	taixiu     *taixiu.Feature
	lottery    *lottery.Feature
	moderation *moderation.Feature
	embeds     *embeds.Feature
	greet      *greet.Feature
	weather    *weather.Feature
	afk        *afk.Feature
	ping       *ping.Feature
	info       *info.Feature
	chat       *chat.Feature
	stats      *stats.Feature
	settings   *settings.Feature
}

// New creates the bot, opens the gateway connection and registers commands
func New(config Config, uowFactory service.UnitOfWorkFactory, manager *bj.Manager, table *bc.Table, reporter weather.Reporter, eventBus *events.Bus, metrics CommandRecorder) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	if config.LotteryLocation == nil {
		config.LotteryLocation = time.UTC
	}

	// Shared components
	players := common.NewPlayers(uowFactory, config.StartingBalance)
	guildSettings := service.NewGuildSettingsService(uowFactory)
	logChannels := common.NewLogChannels(guildSettings, config.LogChannelID)

	bot := &Bot{
		config:     config,
		session:    dg,
		uowFactory: uowFactory,
		metrics:    metrics,
	}

	bot.balance = balance.NewFeature(uowFactory, config.StartingBalance, config.AdminID)
	bot.blackjack = blackjack.NewFeature(dg, manager, players)
	bot.baucua = baucua.NewFeature(dg, table, players)
	bot.coinflip = coinflip.NewFeature(players)
	bot.taixiu = taixiu.NewFeature(players)
	bot.lottery = lottery.NewFeature(dg, uowFactory, players, logChannels, config.LotteryLocation)
	bot.moderation = moderation.NewFeature(uowFactory)
	bot.embeds = embeds.NewFeature(uowFactory)
	bot.greet = greet.NewFeature(uowFactory, guildSettings)
	bot.weather = weather.NewFeature(reporter)
	bot.afk = afk.NewFeature(afk.NewRegistry())
	bot.ping = ping.NewFeature()
	bot.info = info.NewFeature(info.NewHostStats())
	bot.chat = chat.NewFeature()
	bot.stats = stats.NewFeature(service.NewStatsService(uowFactory))
	bot.settings = settings.NewFeature(guildSettings)

	gamelog.NewLogger(dg, logChannels).SubscribeTo(eventBus)

	// Register handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleMessageDelete)
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithFields(log.Fields{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		}).Info("Connected to Discord")
	})

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start background jobs
	if err := bot.startScheduler(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error starting scheduler: %w", err)
	}

	return bot, nil
}

// Close stops background jobs, refunds open bầu cua rounds and closes the gateway connection
func (b *Bot) Close() error {
	if b.scheduler != nil {
		<-b.scheduler.Stop().Done()
		log.Info("Background jobs stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	b.baucua.Shutdown(ctx)
	return b.session.Close()
}

// handleCommands routes slash commands and autocomplete requests to features
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.routeAutocomplete(s, i)
		return
	default:
		return
	}

	// Every command works on guild state
	if i.GuildID == "" || i.Member == nil {
		common.RespondWithError(s, i, "Commands can only be used in a server.")
		return
	}

	name := i.ApplicationCommandData().Name
	if b.metrics != nil {
		b.metrics.RecordCommand(name)
	}

	switch name {
	case "balance", "give", "economy":
		b.balance.HandleCommand(s, i)
	case "blackjack":
		b.blackjack.HandleCommand(s, i)
	case "baucua":
		b.baucua.HandleCommand(s, i)
	case "coinflip":
		b.coinflip.HandleCommand(s, i)
	case "taixiu":
		b.taixiu.HandleCommand(s, i)
	case "lottery":
		b.lottery.HandleCommand(s, i)
	case "mod":
		b.moderation.HandleCommand(s, i)
	case "embed":
		b.embeds.HandleCommand(s, i)
	case "greet":
		b.greet.HandleCommand(s, i)
	case "weather":
		b.weather.HandleCommand(s, i)
	case "afk":
		b.afk.HandleCommand(s, i)
	case "ping":
		b.ping.HandleCommand(s, i)
	case "userinfo", "serverinfo", "avatar", "about":
		b.info.HandleCommand(s, i)
	case "chat":
		b.chat.HandleCommand(s, i)
	case "stats", "leaderboard":
		b.stats.HandleCommand(s, i)
	case "settings":
		b.settings.HandleCommand(s, i)
	}
}

// routeAutocomplete answers option suggestions
func (b *Bot) routeAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "embed":
		b.embeds.HandleAutocomplete(s, i)
	case "weather":
		b.weather.HandleAutocomplete(s, i)
	}
}

// handleInteractions routes component interactions and modal submits to features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case blackjack.IsBlackjackComponent(customID):
			b.blackjack.HandleInteraction(s, i)
		case baucua.IsBauCuaInteraction(customID):
			b.baucua.HandleInteraction(s, i)
		case info.IsAvatarInteraction(customID):
			b.info.HandleInteraction(s, i)
		case embeds.IsEmbedInteraction(customID):
			b.embeds.HandleInteraction(s, i)
		}

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		switch {
		case baucua.IsBauCuaInteraction(customID):
			b.baucua.HandleInteraction(s, i)
		case embeds.IsEmbedInteraction(customID):
			b.embeds.HandleInteraction(s, i)
		}
	}
}

// handleMessageCreate feeds guild messages to the AFK tracker
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Skip messages from our own bot to avoid loops
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	b.afk.HandleMessage(s, m)
}

// handleMessageDelete aborts games whose message disappeared
func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	b.blackjack.HandleMessageDelete(s, m)
	b.baucua.HandleMessageDelete(s, m)
}

func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.greet.HandleMemberAdd(s, m)
}

// startScheduler runs the daily lottery draw and the blackjack session janitor
func (b *Bot) startScheduler() error {
	b.scheduler = cron.New(cron.WithLocation(b.config.LotteryLocation))

	if _, err := b.scheduler.AddFunc(b.config.LotteryDrawCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := b.lottery.RunDraw(ctx); err != nil {
			log.WithError(err).Error("Lottery draw failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid lottery draw schedule %q: %w", b.config.LotteryDrawCron, err)
	}

	if _, err := b.scheduler.AddFunc("@every 30s", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		b.blackjack.ExpireStale(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule blackjack janitor: %w", err)
	}

	b.scheduler.Start()
	log.WithField("lottery_cron", b.config.LotteryDrawCron).Info("Background jobs started")
	return nil
}
