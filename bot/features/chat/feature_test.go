package chat

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyID(t *testing.T) {
	id, err := ParseReplyID("  1234567890123 ")
	require.NoError(t, err)
	assert.Equal(t, "1234567890123", id)

	id, err = ParseReplyID("")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = ParseReplyID("abc")
	assert.ErrorIs(t, err, errInvalidReplyID)
	_, err = ParseReplyID("-5")
	assert.ErrorIs(t, err, errInvalidReplyID)
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage("hello @everyone", "10", "")
	assert.Equal(t, "hello @everyone", msg.Content)
	assert.Nil(t, msg.Reference)
	assert.Equal(t, []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}, msg.AllowedMentions.Parse)

	msg = BuildMessage("hi", "10", "99")
	require.NotNil(t, msg.Reference)
	assert.Equal(t, "99", msg.Reference.MessageID)
	assert.Equal(t, "10", msg.Reference.ChannelID)
}

func TestCommand(t *testing.T) {
	cmd := Command()
	assert.Equal(t, "chat", cmd.Name)
	require.NotNil(t, cmd.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionManageMessages), *cmd.DefaultMemberPermissions)
	require.Len(t, cmd.Options, 3)
	assert.True(t, cmd.Options[0].Required)
	assert.True(t, cmd.Options[1].Required)
	assert.False(t, cmd.Options[2].Required)
}
