package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"elaina/events"
	"elaina/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{subject: subject, data: data})
	return nil
}

func (f *fakePublisher) snapshot() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.messages...)
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "elaina.events.balance_change"},
		{events.UserCreatedEvent{}, "elaina.events.user_created"},
		{events.GameSettledEvent{}, "elaina.events.game_settled"},
		{events.LotteryDrawnEvent{}, "elaina.events.lottery_drawn"},
		{events.ModerationActionEvent{}, "elaina.events.moderation_action"},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
		})
	}

	assert.Len(t, mapper.ForwardedEventTypes(), len(tests))
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	fake := &fakePublisher{}
	publisher := NewNATSEventPublisher(fake, NewEventSubjectMapper())
	fixed := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	event := events.GameSettledEvent{
		RoundID: 42,
		Game:    models.GameTypeCoinflip,
		UserID:  111,
		GuildID: 555,
		Wager:   1000,
		Payout:  2000,
		Outcome: "win",
	}
	require.NoError(t, publisher.Publish(context.Background(), event))

	messages := fake.snapshot()
	require.Len(t, messages, 1)
	assert.Equal(t, "elaina.events.game_settled", messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(messages[0].data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "game_settled", envelope.EventType)
	assert.Equal(t, "elaina", envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))

	var payload events.GameSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	fake := &fakePublisher{err: errors.New("no responders")}
	publisher := NewNATSEventPublisher(fake, NewEventSubjectMapper())

	err := publisher.Publish(context.Background(), events.UserCreatedEvent{DiscordID: 1})
	assert.ErrorContains(t, err, "no responders")
}

func TestNATSEventPublisher_SubscribeTo(t *testing.T) {
	fake := &fakePublisher{}
	publisher := NewNATSEventPublisher(fake, NewEventSubjectMapper())
	bus := events.NewBus()
	publisher.SubscribeTo(bus)

	bus.Emit(context.Background(), events.ModerationActionEvent{GuildID: 1, Action: "ban", TargetID: 2})
	bus.Emit(context.Background(), events.BalanceChangeEvent{UserID: 2, ChangeAmount: 50})

	require.Eventually(t, func() bool {
		return len(fake.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	subjects := []string{fake.snapshot()[0].subject, fake.snapshot()[1].subject}
	assert.ElementsMatch(t, []string{"elaina.events.moderation_action", "elaina.events.balance_change"}, subjects)
}
