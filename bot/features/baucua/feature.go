// Package baucua is the Discord front end of the bầu cua table.
package baucua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"elaina/bot/common"
	"elaina/game"
	bc "elaina/game/baucua"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	interactionTimeout = 30 * time.Second
	refreshInterval    = 5 * time.Second
)

// Feature handles /baucua, its bet buttons and modals, and message deletions
type Feature struct {
	session *discordgo.Session
	table   *bc.Table
	players *common.Players
	refresh time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	runners  sync.WaitGroup
}

// NewFeature creates a new bầu cua feature instance
func NewFeature(session *discordgo.Session, table *bc.Table, players *common.Players) *Feature {
	return &Feature{
		session: session,
		table:   table,
		players: players,
		refresh: refreshInterval,
		stop:    make(chan struct{}),
	}
}

// HandleCommand opens a table owned by the invoking user
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	guildID, userID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	user := common.InteractionUser(i)
	name := common.InteractionDisplayName(i)

	if _, err := f.players.EnsurePlayable(ctx, guildID, userID, user.Username); err != nil {
		common.HandleError(s, i, common.GameError(err), false)
		return
	}

	snap, err := f.table.Open(guildID, userID, i.ChannelID)
	if err != nil {
		if errors.Is(err, bc.ErrRoundExists) {
			err = common.NewUserError("You already have a bầu cua table open.", "bau cua round already open")
		}
		common.HandleError(s, i, err, false)
		return
	}

	if err := common.RespondWithEmbed(s, i, BuildRoundEmbed(snap, name), Components(snap.RoundID, true), false); err != nil {
		log.WithField("round_id", snap.RoundID).WithError(err).Error("Failed to send bau cua table")
		if _, abortErr := f.table.AbortRound(ctx, snap.RoundID); abortErr != nil {
			log.WithError(abortErr).Error("Failed to drop bau cua round")
		}
		return
	}

	aborted := f.trackMessage(ctx, snap.RoundID, func() (*discordgo.Message, error) {
		return s.InteractionResponse(i.Interaction)
	})
	if aborted != nil {
		components := Components(snap.RoundID, false)
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds:     &[]*discordgo.MessageEmbed{BuildResultEmbed(aborted, nil, time.Now())},
			Components: &components,
		}); err != nil {
			log.WithField("round_id", snap.RoundID).WithError(err).Warn("Failed to show cancelled bau cua round")
		}
		return
	}

	f.runners.Add(1)
	go f.run(snap.RoundID, name)
}

// trackMessage attaches the posted table to its round so deleting it refunds every
// stake. A table whose message cannot be fetched is cancelled and the result returned.
func (f *Feature) trackMessage(ctx context.Context, roundID string, fetch func() (*discordgo.Message, error)) *bc.Result {
	msg, err := fetch()
	if err == nil {
		err = f.table.AttachMessage(roundID, msg.ChannelID, msg.ID)
		if err == nil || errors.Is(err, bc.ErrRoundNotFound) {
			return nil
		}
	}

	log.WithField("round_id", roundID).WithError(err).Warn("Failed to track bau cua message, cancelling")
	result, abortErr := f.table.AbortRound(ctx, roundID)
	if abortErr != nil {
		return nil
	}
	return result
}

// run refreshes the stakes on the table until betting closes, then rolls
func (f *Feature) run(roundID, ownerName string) {
	defer f.runners.Done()

	var shown int64 = -1
	for {
		snap, err := f.table.Snapshot(roundID)
		if err != nil {
			return
		}
		remaining := time.Until(snap.ClosesAt)
		if remaining <= 0 {
			break
		}
		if staked := totalStaked(snap); staked != shown {
			f.editTable(snap, BuildRoundEmbed(snap, ownerName), true)
			shown = staked
		}

		select {
		case <-time.After(min(f.refresh, remaining)):
		case <-f.stop:
			return
		}
	}

	f.finish(roundID, ownerName)
}

func (f *Feature) finish(roundID, ownerName string) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	result, err := f.table.Close(ctx, roundID)
	if result == nil {
		if !errors.Is(err, bc.ErrRoundNotFound) {
			log.WithField("round_id", roundID).WithError(err).Error("Failed to close bau cua round")
		}
		return
	}
	if err != nil {
		log.WithField("round_id", roundID).WithError(err).Error("Bau cua round settled with errors")
	}

	snap := result.Snapshot
	f.editTable(snap, BuildRoundEmbed(snap, ownerName), false)

	guildID := fmt.Sprintf("%d", snap.GuildID)
	nameOf := func(userID int64) string {
		return common.GetDisplayNameInt64(f.session, guildID, userID)
	}
	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{BuildResultEmbed(result, nameOf, time.Now())},
	}
	if snap.MessageID != "" {
		send.Reference = &discordgo.MessageReference{MessageID: snap.MessageID, ChannelID: snap.ChannelID}
	}
	if _, err := f.session.ChannelMessageSendComplex(snap.ChannelID, send); err != nil {
		log.WithField("round_id", roundID).WithError(err).Warn("Failed to post bau cua result")
	}
}

func (f *Feature) editTable(snap bc.Snapshot, embed *discordgo.MessageEmbed, active bool) {
	if snap.ChannelID == "" || snap.MessageID == "" {
		return
	}
	components := Components(snap.RoundID, active)
	_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    snap.ChannelID,
		ID:         snap.MessageID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		log.WithField("round_id", snap.RoundID).WithError(err).Warn("Failed to update bau cua table")
	}
}

func totalStaked(snap bc.Snapshot) int64 {
	var total int64
	for _, amount := range snap.Totals {
		total += amount
	}
	return total
}

// HandleInteraction opens the stake modal for a button and places the bet on submit
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		f.handleButton(s, i)
	case discordgo.InteractionModalSubmit:
		f.handleStake(s, i)
	}
}

func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	roundID, animal, ok := ParseBetID(i.MessageComponentData().CustomID)
	if !ok {
		common.RespondWithError(s, i, "Unknown bầu cua interaction")
		return
	}

	snap, err := f.table.Snapshot(roundID)
	if err != nil || snap.State != bc.StateOpen || !time.Now().Before(snap.ClosesAt) {
		common.HandleError(s, i, betError(bc.ErrRoundClosed), false)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: StakeModal(roundID, animal),
	})
	if err != nil {
		log.WithField("round_id", roundID).WithError(err).Error("Failed to open bau cua stake modal")
	}
}

func (f *Feature) handleStake(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	roundID, animal, ok := ParseModalID(data.CustomID)
	if !ok {
		common.RespondWithError(s, i, "Unknown bầu cua interaction")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	guildID, userID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	user, err := f.players.EnsurePlayable(ctx, guildID, userID, common.InteractionUser(i).Username)
	if err != nil {
		common.HandleError(s, i, common.GameError(err), false)
		return
	}

	amount, err := game.ResolveWagerStrict(common.ModalValues(data)[fieldAmount], user.Balance, bc.MaxStake)
	if err != nil {
		common.HandleError(s, i, common.GameError(err), false)
		return
	}

	accepted, _, err := f.table.PlaceBet(ctx, roundID, userID, animal, amount)
	if err != nil {
		common.HandleError(s, i, betError(err), false)
		return
	}

	if err := common.RespondWithSuccess(s, i, StakeMessage(animal, amount, accepted), true); err != nil {
		log.WithField("round_id", roundID).WithError(err).Warn("Failed to confirm bau cua bet")
	}
}

// StakeMessage confirms a bet, noting when the per-animal limit lowered it
func StakeMessage(animal bc.Animal, requested, accepted int64) string {
	msg := fmt.Sprintf("You bet %s on %s %s.", common.FormatCoins(accepted), animal.Emoji(), animal.Name())
	if accepted < requested {
		msg += fmt.Sprintf(" Lowered to stay within %s per animal.", common.FormatCoins(bc.MaxStake))
	}
	return msg
}

// betError maps table errors to replies
func betError(err error) error {
	switch {
	case errors.Is(err, bc.ErrStakeLimit):
		return common.NewUserError(
			fmt.Sprintf("You already have %s on that animal.", common.FormatCoins(bc.MaxStake)),
			"bau cua stake limit reached")
	case errors.Is(err, bc.ErrRoundClosed), errors.Is(err, bc.ErrRoundNotFound):
		return common.NewUserError("Betting for this round has closed.", "bau cua round closed")
	case errors.Is(err, bc.ErrUnknownAnimal):
		return common.NewUserError("That animal isn't on the board.", "unknown bau cua animal")
	default:
		return common.GameError(err)
	}
}

// HandleMessageDelete refunds a round whose table was deleted before the roll
func (f *Feature) HandleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	result, err := f.table.Abort(ctx, m.ID)
	if errors.Is(err, bc.ErrRoundNotFound) {
		return
	}
	if err != nil {
		log.WithField("message_id", m.ID).WithError(err).Error("Failed to abort bau cua round")
		return
	}

	content, mentioned := RefundNotice(result)
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: mentioned},
	})
	if err != nil {
		log.WithField("channel_id", m.ChannelID).WithError(err).Warn("Failed to send bau cua refund notice")
	}
}

// RefundNotice tells the players of a cancelled round that they were refunded
func RefundNotice(result *bc.Result) (string, []string) {
	content := "The bầu cua table was deleted and the round cancelled."
	mentioned := make([]string, 0, len(result.Refunded))
	for _, userID := range result.Snapshot.Players {
		amount, ok := result.Refunded[userID]
		if !ok {
			continue
		}
		content += fmt.Sprintf("\n%s got %s back.", common.GetUserMention(userID), common.FormatCoins(amount))
		mentioned = append(mentioned, common.FormatUserID(userID))
	}
	return content, mentioned
}

// Shutdown stops the betting timers and refunds every round still open
func (f *Feature) Shutdown(ctx context.Context) {
	f.stopOnce.Do(func() { close(f.stop) })

	done := make(chan struct{})
	go func() {
		f.runners.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	for _, result := range f.table.AbortAll(ctx) {
		f.editTable(result.Snapshot, BuildResultEmbed(result, nil, time.Now()), false)
	}
}

// Command is the /baucua definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "baucua",
		Description: "Open a bầu cua tôm cá table for everyone in the channel",
	}
}
