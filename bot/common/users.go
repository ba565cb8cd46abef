package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the global name, then the username.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = s.GuildMember(guildID, userID)
	}
	if err == nil && member != nil {
		return MemberDisplayName(member)
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return UserDisplayName(user)
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, FormatUserID(userID))
}

// MemberDisplayName prefers the guild nickname over the user's own names
func MemberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return UserDisplayName(member.User)
	}
	return "Unknown"
}

// UserDisplayName prefers the global display name over the username
func UserDisplayName(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// InteractionUser returns the user who triggered the interaction in a guild or a DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the invoking user's ID, empty when unknown
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if user := InteractionUser(i); user != nil {
		return user.ID
	}
	return ""
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// ParseInteractionIDs extracts the guild and invoking user IDs
func ParseInteractionIDs(i *discordgo.InteractionCreate) (guildID, userID int64, err error) {
	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, NewUserError("This command only works inside a server.", "interaction outside a guild")
	}
	userID, err = ParseUserID(InteractionUserID(i))
	if err != nil {
		return 0, 0, NewSystemError(err, "failed to parse invoking user ID")
	}
	return guildID, userID, nil
}

// InteractionDisplayName returns the invoking user's name as shown in the guild
func InteractionDisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		return MemberDisplayName(i.Member)
	}
	if i.User != nil {
		return UserDisplayName(i.User)
	}
	return "Unknown"
}
