package common

import (
	"github.com/bwmarrin/discordgo"
)

// HasPermissions reports whether perms grants every bit in required. Administrator grants everything.
func HasPermissions(perms, required int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

// MemberHasPermissions checks the invoker's resolved channel permissions on an interaction
func MemberHasPermissions(i *discordgo.InteractionCreate, required int64) bool {
	if i.Member == nil {
		return false
	}
	return HasPermissions(i.Member.Permissions, required)
}

// TopRolePosition returns the highest position among roleIDs, 0 (the @everyone position) when none match
func TopRolePosition(guildRoles []*discordgo.Role, roleIDs []string) int {
	positions := make(map[string]int, len(guildRoles))
	for _, role := range guildRoles {
		positions[role.ID] = role.Position
	}

	top := 0
	for _, id := range roleIDs {
		if pos, ok := positions[id]; ok && pos > top {
			top = pos
		}
	}
	return top
}

// GuildRoles returns the guild's roles from the state cache, falling back to the API
func GuildRoles(s *discordgo.Session, guildID string) ([]*discordgo.Role, error) {
	if guild, err := s.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		return guild.Roles, nil
	}
	return s.GuildRoles(guildID)
}

// GuildOwnerID returns the guild owner's user ID
func GuildOwnerID(s *discordgo.Session, guildID string) (string, error) {
	if guild, err := s.State.Guild(guildID); err == nil && guild.OwnerID != "" {
		return guild.OwnerID, nil
	}
	guild, err := s.Guild(guildID)
	if err != nil {
		return "", err
	}
	return guild.OwnerID, nil
}
