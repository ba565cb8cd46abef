package repository

import (
	"context"
	"testing"

	"elaina/models"
	"elaina/repository/testutil"
	"elaina/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	guildA := newEmbedRepository(testDB.DB.Pool, 1)
	guildB := newEmbedRepository(testDB.DB.Pool, 2)

	rules := &models.StoredEmbed{Name: "Rules"}
	require.NoError(t, guildA.Create(ctx, rules))
	assert.ErrorIs(t, guildA.Create(ctx, &models.StoredEmbed{Name: "rules"}), service.ErrEmbedExists)
	require.NoError(t, guildB.Create(ctx, &models.StoredEmbed{Name: "rules"}), "names are unique per guild only")

	got, err := guildA.GetByName(ctx, "RULES")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBlank())

	color := 0xFF0000
	got.Title = "Server rules"
	got.Color = &color
	got.FooterTimestamp = true
	require.NoError(t, guildA.Update(ctx, got))

	got, err = guildA.GetByName(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, "Server rules", got.Title)
	assert.Equal(t, 0xFF0000, *got.Color)
	assert.True(t, got.FooterTimestamp)
	assert.Equal(t, "", got.Description)

	list, err := guildA.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := guildA.Delete(ctx, "rules")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = guildA.Delete(ctx, "rules")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = guildB.GetByName(ctx, "rules")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestWarningRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := newWarningRepository(testDB.DB.Pool, 10)
	other := newWarningRepository(testDB.DB.Pool, 20)

	for _, reason := range []string{"spam", "caps", "links"} {
		require.NoError(t, repo.Create(ctx, &models.Warning{DiscordID: 5, ModeratorID: 9, Reason: reason}))
	}
	require.NoError(t, other.Create(ctx, &models.Warning{DiscordID: 5, ModeratorID: 9, Reason: "elsewhere"}))

	count, err := repo.CountByMember(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	warnings, err := repo.ListByMember(ctx, 5, 2)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, "links", warnings[0].Reason)
	assert.Equal(t, int64(10), warnings[0].GuildID)
}

func TestGuildSettingsRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := newGuildSettingsRepository(testDB.DB.Pool)

	settings, err := repo.GetOrCreateGuildSettings(ctx, 100)
	require.NoError(t, err)
	assert.False(t, settings.HasGreeting())
	assert.Nil(t, settings.LogChannelID)

	channel := int64(200)
	message := "Welcome {user}"
	settings.GreetChannelID = &channel
	settings.GreetMessage = &message
	settings.LogChannelID = &channel
	require.NoError(t, repo.UpdateGuildSettings(ctx, settings))

	again, err := repo.GetOrCreateGuildSettings(ctx, 100)
	require.NoError(t, err)
	assert.True(t, again.HasGreeting())
	assert.Equal(t, "Welcome {user}", *again.GreetMessage)
	assert.Equal(t, int64(200), *again.LogChannelID)
}

func TestGameRoundAndHistoryRepositories(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	_, err := NewUserRepository(testDB.DB).Create(ctx, 1, "alice", 1000)
	require.NoError(t, err)

	rounds := newGameRoundRepository(testDB.DB.Pool, 50)
	for _, round := range []*models.GameRound{
		testutil.CreateTestGameRound(1, models.GameTypeBlackjack, 100, 200),
		testutil.CreateTestGameRound(1, models.GameTypeBlackjack, 100, 0),
		testutil.CreateTestGameRound(1, models.GameTypeBlackjack, 100, 100),
		testutil.CreateTestGameRound(1, models.GameTypeCoinflip, 50, 100),
	} {
		require.NoError(t, rounds.Create(ctx, round))
		assert.Equal(t, int64(50), round.GuildID)
	}

	stats, err := rounds.GetStats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.GameTypeBlackjack, stats[0].Game)
	assert.Equal(t, 3, stats[0].RoundsTotal)
	assert.Equal(t, 1, stats[0].RoundsWon, "a push is not a win")
	assert.Equal(t, int64(300), stats[0].TotalWager)
	assert.Equal(t, int64(300), stats[0].TotalPayout)

	history := newBalanceHistoryRepository(testDB.DB.Pool, 50)
	entry := testutil.CreateTestBalanceHistory(1, models.TransactionTypeCoinflipWin)
	require.NoError(t, history.Record(ctx, entry))
	assert.Equal(t, int64(50), entry.GuildID)

	elsewhere := testutil.CreateTestBalanceHistory(1, models.TransactionTypeLotteryPrize)
	elsewhere.GuildID = 60
	require.NoError(t, history.Record(ctx, elsewhere))

	entries, err := history.GetByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].TransactionMetadata["test"])
}
