package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesHandlersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		calls = append(calls, "wrong type")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventUserRegistered, "u1", "", nil)))
	assert.Equal(t, []string{"first:u1", "second:u1"}, calls)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	reached := false
	d.Subscribe(EventContactSubmitted, func(context.Context, Event) error { return boom })
	d.Subscribe(EventContactSubmitted, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventContactSubmitted, "c1", "", nil))
	assert.ErrorIs(t, err, boom)
	assert.True(t, reached)
}

func TestNewEventStampsIDAndTime(t *testing.T) {
	e := NewEvent(EventUserDeleted, "u1", "admin-1", nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "admin-1", e.Actor)
}
