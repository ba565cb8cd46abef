package infrastructure

import (
	"strings"

	"elaina/events"
)

// SubjectPrefix roots every subject the bot publishes to
const SubjectPrefix = "elaina.events"

// EventSubjectMapper maps domain events to NATS subjects and back
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject returns the subject an event is published on
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return SubjectPrefix + "." + string(event.Type())
}

// MapSubjectToEventType converts a subject back to its event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	return events.EventType(strings.TrimPrefix(subject, SubjectPrefix+"."))
}

// ForwardedEventTypes lists the event types that leave the process
func (m *EventSubjectMapper) ForwardedEventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeUserCreated,
		events.EventTypeGameSettled,
		events.EventTypeLotteryDrawn,
		events.EventTypeModerationAction,
	}
}
