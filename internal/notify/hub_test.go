package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishOrderAndTopic(t *testing.T) {
	hub := NewHub()
	var got []string

	hub.Subscribe(TopicSession, func(ev Event) { got = append(got, "first:"+ev.Payload.(string)) })
	hub.Subscribe(TopicSession, func(ev Event) { got = append(got, "second:"+ev.Payload.(string)) })
	hub.Subscribe(TopicWatchlist, func(ev Event) { got = append(got, "watchlist") })

	hub.Publish(TopicSession, "alice")

	assert.Equal(t, []string{"first:alice", "second:alice"}, got)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	calls := 0

	unsubscribe := hub.Subscribe(TopicArticles, func(Event) { calls++ })
	hub.Publish(TopicArticles, nil)
	unsubscribe()
	unsubscribe()
	hub.Publish(TopicArticles, nil)

	assert.Equal(t, 1, calls)
}

func TestHub_HandlerMayPublish(t *testing.T) {
	hub := NewHub()
	var onboarding []Event

	hub.Subscribe(TopicSession, func(ev Event) {
		hub.Publish(TopicOnboarding, ev.Payload)
	})
	hub.Subscribe(TopicOnboarding, func(ev Event) { onboarding = append(onboarding, ev) })

	hub.Publish(TopicSession, 42)

	assert.Equal(t, []Event{{Topic: TopicOnboarding, Payload: 42}}, onboarding)
}

func TestHub_NilPublish(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() { hub.Publish(TopicSession, nil) })
}
