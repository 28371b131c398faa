package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.Subject)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventUserLoggedIn, func(_ context.Context, e Event) error {
		seen = append(seen, "login:"+e.Subject)
		return nil
	})

	err := d.Publish(context.Background(), Event{
		Type:      EventUserRegistered,
		Subject:   "alice@example.com",
		Timestamp: time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first:alice@example.com", "second:alice@example.com"}, seen)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	var reached bool
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventUserLoggedIn, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserLoggedIn, Subject: "alice@example.com"})
	assert.NoError(t, err)
	assert.True(t, reached)
}
