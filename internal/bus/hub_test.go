package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(sub *Subscription) []Event {
	events := []Event{}
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestBroadcastReachesOnlyCurrentSubscribers(t *testing.T) {
	hub := NewHub()

	a := hub.Subscribe("a")
	b := hub.Subscribe("b")

	hub.Broadcast(Event{Type: "product_added", Payload: "p1"})

	// c connects strictly after the publish and must see nothing.
	c := hub.Subscribe("c")

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
	assert.Empty(t, drain(c))
}

func TestSendOrderPreservedPerSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("a")

	for i := 0; i < 5; i++ {
		hub.Broadcast(Event{Type: "e", Payload: i})
	}

	events := drain(sub)
	require.Len(t, events, 5)
	for i, e := range events {
		assert.Equal(t, i, e.Payload)
	}
}

func TestGroupPublishAndDirectSend(t *testing.T) {
	hub := NewHub()

	admin := hub.Subscribe("admin")
	shopper := hub.Subscribe("shopper")
	hub.Join("admin", "admin_room")

	hub.Publish("admin_room", Event{Type: "new_question", Payload: "q"})
	assert.Len(t, drain(admin), 1)
	assert.Empty(t, drain(shopper))

	ok := hub.Send("shopper", Event{Type: "question_answered", Payload: "a"})
	assert.True(t, ok)
	assert.Len(t, drain(shopper), 1)
	assert.Empty(t, drain(admin))

	assert.False(t, hub.Send("nobody", Event{Type: "question_answered"}))
}

func TestJoinRequiresSubscription(t *testing.T) {
	hub := NewHub()
	hub.Join("ghost", "admin_room")

	sub := hub.Subscribe("a")
	hub.Join("a", "admin_room")
	hub.Publish("admin_room", Event{Type: "e"})

	assert.Len(t, drain(sub), 1)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe("slow")

	// Overfill the buffer; the publisher must keep going and the overflow
	// is dropped rather than delivered late.
	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(Event{Type: "e", Payload: i})
	}

	events := drain(slow)
	require.Len(t, events, sendBuffer)
	for i, e := range events {
		assert.Equal(t, i, e.Payload)
	}
}

func TestUnsubscribeClosesChannelAndLeavesGroups(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("a")
	hub.Join("a", "admin_room")

	hub.Unsubscribe("a")

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publishing to the departed session must not panic or deliver.
	hub.Broadcast(Event{Type: "e"})
	hub.Publish("admin_room", Event{Type: "e"})
	assert.False(t, hub.Send("a", Event{Type: "e"}))

	// Unsubscribing twice is a no-op.
	hub.Unsubscribe("a")
}

func TestResubscribeReplacesSession(t *testing.T) {
	hub := NewHub()
	old := hub.Subscribe("a")
	fresh := hub.Subscribe("a")

	_, open := <-old.Events()
	assert.False(t, open)

	hub.Broadcast(Event{Type: "e"})
	assert.Len(t, drain(fresh), 1)
}
