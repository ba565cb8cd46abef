package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"elaina/events"
	"elaina/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPublishesAndPersists(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeUserCreated, func(_ context.Context, e events.Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.UserRepository().Create(ctx, 10, "alice", 500)
	require.NoError(t, err)
	uow.EventBus().Publish(events.UserCreatedEvent{DiscordID: 10, Username: "alice", InitialBalance: 500})

	mu.Lock()
	assert.Empty(t, received, "events wait for commit")
	mu.Unlock()

	require.NoError(t, uow.Commit())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered after commit")
	}

	user, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	delivered := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypeUserCreated, func(context.Context, events.Event) {
		delivered <- struct{}{}
	})

	uow := NewUnitOfWorkFactory(testDB.DB, bus).CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.UserRepository().Create(ctx, 11, "bob", 500)
	require.NoError(t, err)
	uow.EventBus().Publish(events.UserCreatedEvent{DiscordID: 11})
	require.NoError(t, uow.Rollback())

	select {
	case <-delivered:
		t.Fatal("rolled back event was delivered")
	case <-time.After(200 * time.Millisecond):
	}

	user, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, uow.Rollback(), "second rollback is a no-op")
}

func TestUnitOfWork_GettersPanicBeforeBegin(t *testing.T) {
	uow := &unitOfWork{}
	assert.PanicsWithValue(t, notStarted, func() { uow.UserRepository() })
	assert.PanicsWithValue(t, notStarted, func() { uow.LotteryRepository() })
}
