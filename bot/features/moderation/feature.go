// Package moderation implements the /mod command group.
package moderation

import (
	"context"
	"time"

	"elaina/bot/common"
	"elaina/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const warningsShown = 10

// Feature handles /mod
type Feature struct {
	uowFactory service.UnitOfWorkFactory
	now        func() time.Time
}

// NewFeature creates a new moderation feature instance
func NewFeature(uowFactory service.UnitOfWorkFactory) *Feature {
	return &Feature{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// request is a parsed /mod invocation
type request struct {
	action      string
	guildID     int64
	moderatorID int64
	target      *discordgo.User
	targetID    int64
	member      *discordgo.Member
	reason      string
	duration    time.Duration
}

// HandleCommand routes /mod subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sub, opts := common.Subcommand(i)
	req, err := f.parse(s, i, sub, opts)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if sub == "warnings" {
		if err := f.handleWarnings(ctx, s, i, req); err != nil {
			common.HandleError(s, i, err, false)
		}
		return
	}

	if err := f.authorize(s, i, req); err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	// Discord calls can be slow, acknowledge before acting
	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Failed to defer moderation response")
		return
	}

	if err := f.execute(ctx, s, i, req); err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	targetName := req.target.Username
	if req.member != nil {
		targetName = common.MemberDisplayName(req.member)
	}
	content := Confirmation(req.action, targetName, req.reason, req.duration)
	if _, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		log.WithError(err).Error("Failed to confirm moderation action")
	}
}

func (f *Feature) parse(s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (*request, error) {
	guildID, moderatorID, err := common.ParseInteractionIDs(i)
	if err != nil {
		return nil, err
	}

	userOpt, ok := opts["user"]
	if !ok {
		return nil, common.NewUserError("Choose a user.", "moderation without target")
	}
	target := userOpt.UserValue(s)
	if target == nil {
		return nil, common.NewUserError("That user could not be found.", "moderation target not resolved")
	}
	targetID, err := common.ParseUserID(target.ID)
	if err != nil {
		return nil, common.NewSystemError(err, "failed to parse moderation target")
	}

	req := &request{
		action:      sub,
		guildID:     guildID,
		moderatorID: moderatorID,
		target:      target,
		targetID:    targetID,
		reason:      service.ModerationReason(common.StringOption(opts, "reason", "")),
	}

	// A missing member means the target left or was never here
	if member, err := s.GuildMember(i.GuildID, target.ID); err == nil {
		req.member = member
	}

	switch sub {
	case service.ActionTimeout:
		req.duration, err = service.ParseModerationDuration(common.StringOption(opts, "duration", ""))
		if err != nil {
			return nil, CheckError(sub, err)
		}
		if req.member == nil {
			return nil, common.NewUserError("That user isn't a member of this server.", "timeout target not a member")
		}
	case service.ActionUntimeout, service.ActionKick, service.ActionWarn:
		if req.member == nil {
			return nil, common.NewUserError("That user isn't a member of this server.", sub+" target not a member")
		}
	case service.ActionBan:
		if window := common.StringOption(opts, "delete_messages", ""); window != "" {
			req.duration, err = service.ParseModerationDuration(window)
			if err != nil {
				return nil, CheckError(sub, err)
			}
		}
	}
	return req, nil
}

// authorize runs the permission and role hierarchy checks for req
func (f *Feature) authorize(s *discordgo.Session, i *discordgo.InteractionCreate, req *request) error {
	need := requirements[req.action]

	ownerID, err := common.GuildOwnerID(s, i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "failed to get guild owner")
	}
	roles, err := common.GuildRoles(s, i.GuildID)
	if err != nil {
		return common.NewSystemError(err, "failed to get guild roles")
	}

	botID := s.State.User.ID
	botMember, err := s.State.Member(i.GuildID, botID)
	if err != nil {
		botMember, err = s.GuildMember(i.GuildID, botID)
		if err != nil {
			return common.NewSystemError(err, "failed to get bot member")
		}
	}

	check := service.ModerationCheck{
		InvokerID:      req.moderatorID,
		TargetID:       req.targetID,
		InvokerHasPerm: common.MemberHasPermissions(i, need.permission),
		BotHasPerm:     common.HasPermissions(i.AppPermissions, need.permission),
		TargetIsMember: req.member != nil,
		InvokerTopRole: common.TopRolePosition(roles, i.Member.Roles),
		BotTopRole:     common.TopRolePosition(roles, botMember.Roles),
	}
	check.OwnerID, _ = common.ParseUserID(ownerID)
	check.BotID, _ = common.ParseUserID(botID)
	if req.member != nil {
		check.TargetTopRole = common.TopRolePosition(roles, req.member.Roles)
	}

	if err := service.CheckModeration(check); err != nil {
		return CheckError(req.action, err)
	}
	return nil
}

func (f *Feature) execute(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, req *request) error {
	uow := f.uowFactory.CreateForGuild(req.guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	moderation := service.NewModerationService(uow.WarningRepository(), uow.EventBus(), req.guildID)
	audit := discordgo.WithAuditLogReason(req.reason)
	now := f.now()

	var err error
	switch req.action {
	case service.ActionWarn:
		if _, _, err = moderation.Warn(ctx, req.targetID, req.moderatorID, req.reason); err != nil {
			return common.NewSystemError(err, "failed to store warning")
		}
		f.notify(s, i, req, now, nil)
	case service.ActionTimeout:
		until := now.Add(req.duration)
		if err = s.GuildMemberTimeout(i.GuildID, req.target.ID, &until, audit); err == nil {
			f.notify(s, i, req, now, &until)
		}
	case service.ActionUntimeout:
		if err = s.GuildMemberTimeout(i.GuildID, req.target.ID, nil, audit); err == nil {
			f.notify(s, i, req, now, nil)
		}
	case service.ActionKick:
		// DM first, the target can't be reached once they share no server with the bot
		f.notify(s, i, req, now, nil)
		err = s.GuildMemberDeleteWithReason(i.GuildID, req.target.ID, req.reason)
	case service.ActionBan:
		f.notify(s, i, req, now, nil)
		err = s.GuildBanCreateWithReason(i.GuildID, req.target.ID, req.reason, service.BanDeleteDays(req.duration))
	case service.ActionUnban:
		err = s.GuildBanDelete(i.GuildID, req.target.ID, audit)
	default:
		return common.NewUserError("Unknown moderation command.", "unknown moderation subcommand "+req.action)
	}
	if err != nil {
		return common.NewUserError("Discord refused the action. Check my permissions and role position.", "moderation API call failed: "+err.Error()).
			WithContext(log.Fields{"action": req.action, "target_id": req.targetID})
	}

	if req.action != service.ActionWarn {
		moderation.RecordAction(ctx, req.action, req.targetID, req.moderatorID, req.reason)
	}
	if err := uow.Commit(); err != nil {
		return common.NewSystemError(err, "failed to commit moderation action")
	}
	return nil
}

// notify DMs the target, best effort
func (f *Feature) notify(s *discordgo.Session, i *discordgo.InteractionCreate, req *request, now time.Time, until *time.Time) {
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return
		}
	}

	channel, err := s.UserChannelCreate(req.target.ID)
	if err == nil {
		embed := NoticeEmbed(req.action, guild, common.InteractionDisplayName(i), req.reason, now, until)
		_, err = s.ChannelMessageSendEmbed(channel.ID, embed)
	}
	if err != nil {
		log.WithField("target_id", req.targetID).WithError(err).Debug("Could not DM moderation notice")
	}
}

func (f *Feature) handleWarnings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, req *request) error {
	if !common.MemberHasPermissions(i, discordgo.PermissionModerateMembers) {
		return CheckError(service.ActionWarn, service.ErrMissingPermission)
	}

	uow := f.uowFactory.CreateForGuild(req.guildID)
	if err := uow.Begin(ctx); err != nil {
		return common.NewSystemError(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	moderation := service.NewModerationService(uow.WarningRepository(), uow.EventBus(), req.guildID)
	warnings, err := moderation.ListWarnings(ctx, req.targetID, warningsShown)
	if err != nil {
		return common.NewSystemError(err, "failed to list warnings")
	}

	name := req.target.Username
	if req.member != nil {
		name = common.MemberDisplayName(req.member)
	}
	return common.RespondWithEmbed(s, i, WarningsEmbed(name, warnings), nil, true)
}

// Command is the /mod definition
func Command() *discordgo.ApplicationCommand {
	perms := int64(discordgo.PermissionModerateMembers | discordgo.PermissionKickMembers | discordgo.PermissionBanMembers)

	user := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: description,
			Required:    true,
		}
	}
	reason := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the action",
	}
	sub := func(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
			Options:     opts,
		}
	}

	return &discordgo.ApplicationCommand{
		Name:                     "mod",
		Description:              "Moderation commands",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			sub(service.ActionWarn, "Warn a member", user("Member to warn"), reason),
			sub("warnings", "List a member's warnings", user("Member to look up")),
			sub(service.ActionTimeout, "Time out a member", user("Member to time out"), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "duration",
				Description: "How long, e.g. 30s, 5m, 1h, 1d, 1w",
				Required:    true,
			}, reason),
			sub(service.ActionUntimeout, "Remove a member's timeout", user("Member to release"), reason),
			sub(service.ActionKick, "Kick a member", user("Member to kick"), reason),
			sub(service.ActionBan, "Ban a user", user("User to ban"), &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "delete_messages",
				Description: "Delete their messages from this window, e.g. 1d (max 7d)",
			}, reason),
			sub(service.ActionUnban, "Unban a user", user("User to unban"), reason),
		},
	}
}
