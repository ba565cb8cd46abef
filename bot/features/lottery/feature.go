// Package lottery implements /lottery and the daily draw job.
package lottery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elaina/bot/common"
	"elaina/models"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// drawScope is the unit of work scope for the global draw
const drawScope = 0

// Feature represents the lottery feature
type Feature struct {
	session     *discordgo.Session
	uowFactory  service.UnitOfWorkFactory
	players     *common.Players
	logChannels *common.LogChannels
	location    *time.Location
	now         func() time.Time
}

// NewFeature creates a new lottery feature instance. Draw dates are days in loc.
func NewFeature(session *discordgo.Session, uowFactory service.UnitOfWorkFactory, players *common.Players, logChannels *common.LogChannels, loc *time.Location) *Feature {
	if loc == nil {
		loc = time.UTC
	}
	return &Feature{
		session:     session,
		uowFactory:  uowFactory,
		players:     players,
		logChannels: logChannels,
		location:    loc,
		now:         time.Now,
	}
}

// HandleCommand routes the /lottery subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, userID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sub, opts := common.Subcommand(i)
	switch sub {
	case "buy":
		err = f.handleBuy(ctx, s, i, guildID, userID, common.StringOption(opts, "number", ""))
	case "tickets":
		err = f.handleTickets(ctx, s, i, guildID, userID)
	case "results":
		err = f.handleResults(ctx, s, i, guildID)
	default:
		err = common.NewUserError("Unknown lottery command.", "unknown lottery subcommand "+sub)
	}
	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handleBuy(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, number string) error {
	user := common.InteractionUser(i)
	if _, err := f.players.EnsurePlayable(ctx, guildID, userID, user.Username); err != nil {
		return err
	}

	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	lotteryService := f.lotteryService(uow, guildID)
	purchase, err := lotteryService.BuyTicket(ctx, userID, number, f.now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicketNumber):
			return common.NewUserError("Enter a valid 6-digit ticket number, e.g. `123456`.", "invalid ticket number")
		case errors.Is(err, service.ErrTicketLimitReached):
			return common.NewUserError(fmt.Sprintf("You already hold %d tickets for this draw.", service.MaxTicketsPerDraw), "ticket limit reached")
		case errors.Is(err, service.ErrInsufficientBalance):
			return common.NewUserError("You can't afford the next ticket.", "insufficient balance for ticket")
		default:
			return common.GameError(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit ticket purchase")
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"guild_id":      guildID,
		"ticket_number": purchase.Ticket.TicketNumber,
		"price":         purchase.Ticket.Price,
	}).Info("Lottery ticket purchased")

	return common.RespondWithEmbed(s, i, PurchaseEmbed(purchase), nil, false)
}

func (f *Feature) handleTickets(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	tickets, err := f.lotteryService(uow, guildID).GetTickets(ctx, userID, f.now())
	if err != nil {
		return common.NewSystemError(err, "failed to get lottery tickets")
	}
	return common.RespondWithEmbed(s, i, TicketsEmbed(common.InteractionDisplayName(i), tickets), nil, true)
}

func (f *Feature) handleResults(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) error {
	uow := f.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	draw, err := f.lotteryService(uow, guildID).GetLatestDraw(ctx)
	if err != nil {
		return common.NewSystemError(err, "failed to get latest draw")
	}
	if draw == nil {
		return common.NewUserError("No draw has taken place yet.", "no lottery draws")
	}
	return common.RespondWithEmbed(s, i, DrawEmbed(draw, nil), nil, false)
}

// RunDraw conducts today's draw, then announces it in every guild's log
// channel and DMs the winners. A draw that already happened is skipped.
func (f *Feature) RunDraw(ctx context.Context) error {
	drawDate := service.LotteryDrawDate(f.now(), f.location)

	uow := f.uowFactory.CreateForGuild(drawScope)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := f.lotteryService(uow, drawScope).ConductDraw(ctx, drawDate)
	if errors.Is(err, service.ErrDrawAlreadyDone) {
		log.WithField("draw_date", drawDate.Format(time.DateOnly)).Info("Lottery draw already conducted, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to conduct draw: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit draw: %w", err)
	}

	result.Draw.DrawnAt = f.now()
	byGuild := WinnersByGuild(result.Winners)

	for _, guild := range f.session.State.Guilds {
		guildID, err := common.ParseUserID(guild.ID)
		if err != nil {
			continue
		}
		channelID := f.logChannels.For(ctx, guildID)
		if channelID == "" {
			continue
		}
		if _, err := f.session.ChannelMessageSendEmbed(channelID, DrawEmbed(result.Draw, byGuild[guildID])); err != nil {
			log.WithFields(log.Fields{
				"guild_id":   guildID,
				"channel_id": channelID,
			}).WithError(err).Warn("Failed to post lottery results")
		}
	}

	for _, winner := range result.Winners {
		f.notifyWinner(result.Draw, winner)
	}
	return nil
}

// notifyWinner DMs a winner, best effort
func (f *Feature) notifyWinner(draw *models.LotteryDraw, winner *models.LotteryWinner) {
	channel, err := f.session.UserChannelCreate(common.FormatUserID(winner.Ticket.DiscordID))
	if err == nil {
		_, err = f.session.ChannelMessageSendEmbed(channel.ID, WinnerDM(draw, winner))
	}
	if err != nil {
		log.WithField("user_id", winner.Ticket.DiscordID).WithError(err).Debug("Could not DM lottery winner")
	}
}

func (f *Feature) lotteryService(uow service.UnitOfWork, guildID int64) service.LotteryService {
	return service.NewLotteryService(uow.LotteryRepository(), uow.UserRepository(), uow.BalanceHistoryRepository(), uow.EventBus(), guildID, f.location, nil)
}

// Command is the /lottery definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "lottery",
		Description: "Daily lottery",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "buy",
				Description: "Buy a ticket for the next draw",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "number",
						Description: "A 6-digit number",
						Required:    true,
						MinLength:   intPtr(6),
						MaxLength:   6,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "tickets",
				Description: "Show your tickets for the next draw",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "results",
				Description: "Show the latest draw",
			},
		},
	}
}

func intPtr(v int) *int {
	return &v
}
