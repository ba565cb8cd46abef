// Package blackjack is the Discord front end of the blackjack session engine.
package blackjack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elaina/bot/common"
	bj "elaina/game/blackjack"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const interactionTimeout = 30 * time.Second

// Feature handles /blackjack, its buttons and message deletions
type Feature struct {
	session *discordgo.Session
	manager *bj.Manager
	players *common.Players
}

// NewFeature creates a new blackjack feature instance
func NewFeature(session *discordgo.Session, manager *bj.Manager, players *common.Players) *Feature {
	return &Feature{
		session: session,
		manager: manager,
		players: players,
	}
}

// HandleCommand starts a game for the invoking user
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	guildID, userID, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	opts := common.OptionMap(i.ApplicationCommandData().Options)
	wager := common.StringOption(opts, "bet", "")
	user := common.InteractionUser(i)
	name := common.InteractionDisplayName(i)

	if _, err := f.players.EnsurePlayable(ctx, guildID, userID, user.Username); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	view, err := f.manager.Start(ctx, bj.StartRequest{
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: i.ChannelID,
		WagerSpec: wager,
	})
	if err != nil {
		if errors.Is(err, bj.ErrSessionAlreadyActive) {
			err = common.NewUserError("You already have a blackjack game in progress.", "blackjack session already active")
		}
		common.HandleError(s, i, common.GameError(err), false)
		return
	}

	embed := BuildEmbed(view, name, user.AvatarURL(""))
	if err := common.RespondWithEmbed(s, i, embed, Components(view), false); err != nil {
		log.WithFields(log.Fields{
			"session_id": view.SessionID,
			"user_id":    userID,
		}).WithError(err).Error("Failed to send blackjack message, refunding")
		if _, abortErr := f.manager.AbortSession(ctx, view.SessionID); abortErr != nil {
			log.WithError(abortErr).Error("Failed to refund blackjack session")
		}
		return
	}

	aborted := f.trackMessage(ctx, view.SessionID, func() (*discordgo.Message, error) {
		return s.InteractionResponse(i.Interaction)
	})
	if aborted == nil {
		return
	}
	embed = BuildEmbed(aborted, name, user.AvatarURL(""))
	components := Components(aborted)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	}); err != nil {
		log.WithField("session_id", view.SessionID).WithError(err).Warn("Failed to show refunded blackjack game")
	}
}

// trackMessage attaches the posted game message to its session so deleting it refunds
// the wager. A message that cannot be fetched could never be matched, so the session is
// refunded straight away and the aborted view returned.
func (f *Feature) trackMessage(ctx context.Context, sessionID string, fetch func() (*discordgo.Message, error)) *bj.View {
	msg, err := fetch()
	if err == nil {
		err = f.manager.AttachMessage(sessionID, msg.ChannelID, msg.ID)
		if err == nil || errors.Is(err, bj.ErrSessionNotFound) {
			return nil
		}
	}

	log.WithField("session_id", sessionID).WithError(err).Warn("Failed to track blackjack message, refunding")
	view, abortErr := f.manager.AbortSession(ctx, sessionID)
	if abortErr != nil {
		if !errors.Is(abortErr, bj.ErrSessionNotFound) {
			log.WithField("session_id", sessionID).WithError(abortErr).Error("Failed to refund blackjack session")
		}
		return nil
	}
	return view
}

// HandleInteraction routes the Draw and Stand buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	kind, sessionID, ok := ParseCustomID(customID)
	if !ok {
		common.RespondWithError(s, i, "Unknown blackjack interaction")
		return
	}

	userID, err := common.ParseUserID(common.InteractionUserID(i))
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to parse button user"), false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	cmd := bj.Command{Kind: kind, UserID: userID, SessionID: sessionID}
	user := common.InteractionUser(i)
	name := common.InteractionDisplayName(i)
	avatar := user.AvatarURL("")

	if kind == bj.CommandDraw {
		view, err := f.manager.Handle(ctx, cmd, nil)
		if err != nil {
			common.HandleError(s, i, commandError(err), false)
			return
		}
		if err := common.UpdateComponentMessage(s, i, BuildEmbed(view, name, avatar), Components(view)); err != nil {
			log.WithField("session_id", sessionID).WithError(err).Error("Failed to update blackjack message")
		}
		return
	}

	// The dealer plays out with a delay between draws, so acknowledge first
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.WithField("session_id", sessionID).WithError(err).Error("Failed to defer blackjack stand")
		return
	}

	progress := func(view *bj.View) {
		if err := common.UpdateMessage(s, i, BuildEmbed(view, name, avatar), Components(view)); err != nil {
			log.WithField("session_id", sessionID).WithError(err).Warn("Failed to show dealer draw")
		}
	}

	view, err := f.manager.Handle(ctx, cmd, progress)
	if err != nil && view == nil {
		common.HandleError(s, i, commandError(err), true)
		return
	}
	if err != nil {
		log.WithField("session_id", sessionID).WithError(err).Error("Blackjack settlement failed")
		common.FollowUpWithError(s, i, "Your game finished but the payout failed. An admin has been notified in the logs.")
	}
	if err := common.UpdateMessage(s, i, BuildEmbed(view, name, avatar), Components(view)); err != nil {
		log.WithField("session_id", sessionID).WithError(err).Error("Failed to update blackjack message")
	}
}

// HandleMessageDelete refunds a game whose message was deleted before it finished
func (f *Feature) HandleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	view, err := f.manager.Abort(ctx, m.ID)
	if errors.Is(err, bj.ErrSessionNotFound) {
		return
	}
	if err != nil {
		log.WithField("message_id", m.ID).WithError(err).Error("Failed to abort blackjack session")
		return
	}

	content := fmt.Sprintf("%s your blackjack game was cancelled and %s was refunded.",
		common.GetUserMention(view.UserID), common.FormatCoins(view.Wager))
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{common.FormatUserID(view.UserID)},
		},
	})
	if err != nil {
		log.WithField("channel_id", m.ChannelID).WithError(err).Warn("Failed to send blackjack refund notice")
	}
}

// ExpireStale closes idle games and disables their buttons
func (f *Feature) ExpireStale(ctx context.Context) {
	for _, view := range f.manager.ExpireStale(ctx) {
		if view.ChannelID == "" || view.MessageID == "" {
			continue
		}

		guildID := fmt.Sprintf("%d", view.GuildID)
		name := common.GetDisplayNameInt64(f.session, guildID, view.UserID)
		embed := BuildEmbed(view, name, "")
		components := Components(view)

		_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    view.ChannelID,
			ID:         view.MessageID,
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		if err != nil {
			log.WithFields(log.Fields{
				"session_id": view.SessionID,
				"message_id": view.MessageID,
			}).WithError(err).Warn("Failed to disable expired blackjack message")
		}
	}
}

// commandError maps engine errors from a button press to replies
func commandError(err error) error {
	switch {
	case errors.Is(err, bj.ErrNotSessionOwner):
		return common.NewUserError("This isn't your game!", "blackjack button pressed by non-owner")
	case errors.Is(err, bj.ErrSessionNotFound):
		return common.NewUserError("This game has expired.", "blackjack session not found")
	case errors.Is(err, bj.ErrInvalidCommand):
		return common.NewUserError("That move isn't allowed right now.", "invalid blackjack command")
	default:
		return common.NewSystemError(err, "blackjack command failed")
	}
}

// Command is the /blackjack definition
func Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "blackjack",
		Description: "Play blackjack against the dealer",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "bet",
				Description: "Amount to bet, or \"all\"",
				Required:    true,
			},
		},
	}
}
