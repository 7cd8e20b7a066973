package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(_ context.Context, e Event) { got = append(got, "first:"+e.EntityID) })
	b.Subscribe(func(_ context.Context, e Event) { got = append(got, "second:"+e.EntityID) })

	b.Publish(context.Background(), Event{Kind: SkillCreated, UserID: "u1", EntityID: "s1"})

	assert.Equal(t, []string{"first:s1", "second:s1"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(func(context.Context, Event) { calls++ })
	require.Equal(t, 1, b.Len())

	unsub()
	unsub()
	b.Publish(context.Background(), Event{Kind: SkillDeleted})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, b.Len())
}

func TestUnsubscribeInsideHandler(t *testing.T) {
	b := NewBus()
	calls := 0
	var unsub func()
	unsub = b.Subscribe(func(context.Context, Event) {
		calls++
		unsub()
	})

	b.Publish(context.Background(), Event{Kind: SkillUpdated})
	b.Publish(context.Background(), Event{Kind: SkillUpdated})
	assert.Equal(t, 1, calls)
}

func TestPanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	b := NewBus()
	reached := false
	b.Subscribe(func(context.Context, Event) { panic("boom") })
	b.Subscribe(func(context.Context, Event) { reached = true })

	assert.NotPanics(t, func() {
		b.Publish(context.Background(), Event{Kind: ResourceCreated})
	})
	assert.True(t, reached)
}

func TestPublishStampsTime(t *testing.T) {
	b := NewBus()
	var got Event
	b.Subscribe(func(_ context.Context, e Event) { got = e })

	b.Publish(context.Background(), Event{Kind: ResourceUpdated})
	assert.False(t, got.At.IsZero())

	var nilBus *Bus
	assert.NotPanics(t, func() { nilBus.Publish(context.Background(), Event{}) })
}
