package greet

import (
	"testing"
	"time"

	"elaina/bot/features/embeds"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	p := &embeds.Placeholders{User: "<@42>", ServerName: "Witches", ServerMemberCount: 9}
	stored := []*models.StoredEmbed{{Name: "welcome", Title: "Hello {user}"}}

	msg := Message("Welcome {user} to {server_name}! {embed:welcome}", stored, p, time.Now())
	require.NotNil(t, msg)
	assert.Equal(t, "Welcome <@42> to Witches!", msg.Content)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "Hello <@42>", msg.Embeds[0].Title)
	require.NotNil(t, msg.AllowedMentions)
}

func TestMessageOnlyEmbeds(t *testing.T) {
	p := &embeds.Placeholders{}
	stored := []*models.StoredEmbed{{Name: "welcome", Description: "hi"}}

	msg := Message("{embed:welcome}", stored, p, time.Now())
	require.NotNil(t, msg)
	assert.Empty(t, msg.Content)
	assert.Len(t, msg.Embeds, 1)
}

func TestMessageEmpty(t *testing.T) {
	assert.Nil(t, Message("{embed:missing}", nil, &embeds.Placeholders{}, time.Now()))
}
