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

func TestLotteryRepository_Tickets(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	users := NewUserRepository(testDB.DB)
	_, err := users.Create(ctx, 1, "alice", 0)
	require.NoError(t, err)
	_, err = users.Create(ctx, 2, "bob", 0)
	require.NoError(t, err)

	repo := newLotteryRepository(testDB.DB.Pool, 777)
	today := testutil.DrawDate(2026, 3, 9)
	tomorrow := today.AddDate(0, 0, 1)

	for _, ticket := range []*models.LotteryTicket{
		testutil.CreateTestTicket(1, today, "000001"),
		testutil.CreateTestTicket(1, today, "123456"),
		testutil.CreateTestTicket(2, today, "000001"),
		testutil.CreateTestTicket(1, tomorrow, "000001"),
	} {
		require.NoError(t, repo.CreateTicket(ctx, ticket))
		assert.NotZero(t, ticket.ID)
		assert.Equal(t, int64(777), ticket.GuildID)
	}

	count, err := repo.CountTicketsForUser(ctx, today, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mine, err := repo.GetTicketsForUser(ctx, today, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "000001", mine[0].TicketNumber)
	assert.True(t, mine[0].DrawDate.Equal(today))
	assert.Nil(t, mine[0].Prize)

	winners, err := repo.GetTicketsByNumbers(ctx, today, []string{"000001", "999999"})
	require.NoError(t, err)
	require.Len(t, winners, 2)

	require.NoError(t, repo.SetTicketPrize(ctx, winners[0].ID, 500000000))
	mine, err = repo.GetTicketsForUser(ctx, today, 1)
	require.NoError(t, err)
	assert.True(t, mine[0].IsWinner())
}

func TestLotteryRepository_Draws(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := newLotteryRepository(testDB.DB.Pool, 0)
	first := testutil.DrawDate(2026, 3, 8)
	second := testutil.DrawDate(2026, 3, 9)

	latest, err := repo.GetLatestDraw(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	numbers := []string{"000001", "000002", "000003", "000004", "000005", "000006", "000007", "000008"}
	require.NoError(t, repo.CreateDraw(ctx, &models.LotteryDraw{DrawDate: first, WinningNumbers: numbers}))
	require.NoError(t, repo.CreateDraw(ctx, &models.LotteryDraw{DrawDate: second, WinningNumbers: numbers, WinnerCount: 1, TotalPaid: 40000}))

	err = repo.CreateDraw(ctx, &models.LotteryDraw{DrawDate: second, WinningNumbers: numbers})
	assert.ErrorIs(t, err, service.ErrDrawAlreadyDone)

	draw, err := repo.GetDraw(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, draw)
	assert.Equal(t, numbers, draw.WinningNumbers)

	latest, err = repo.GetLatestDraw(ctx)
	require.NoError(t, err)
	assert.True(t, latest.DrawDate.Equal(second))
	assert.Equal(t, int64(40000), latest.TotalPaid)

	missing, err := repo.GetDraw(ctx, testutil.DrawDate(2020, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
