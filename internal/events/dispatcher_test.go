package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []EventType
	dispatcher.Subscribe(EventOrderRegistered, func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventOrderRegistered, func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})
	dispatcher.Subscribe(EventOrderStatusChanged, func(_ context.Context, event Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventOrderRegistered}))
	assert.Equal(t, []EventType{EventOrderRegistered, EventOrderRegistered}, seen)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventRefillRegistered}))
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventAssessmentFiled, func(context.Context, Event) error {
		calls++
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventAssessmentFiled, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventAssessmentFiled}))
	assert.Equal(t, 2, calls)
}
