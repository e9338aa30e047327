package notification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSender struct {
	events []Event
	err    error
}

func (f *fakeSender) WriteJSON(v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, v.(Event))
	return nil
}

func TestHubPublishScopedToUser(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a, b, other := &fakeSender{}, &fakeSender{}, &fakeSender{}
	hub.Subscribe("c1", "u1", a)
	hub.Subscribe("c1", "u1", b)
	hub.Subscribe("c2", "u1", other)

	sent := hub.Publish("c1", "u1", Event{Type: "notification"})
	assert.Equal(t, 2, sent)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Empty(t, other.events)
}

func TestHubDropsFailingSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Subscribe("c1", "u1", &fakeSender{err: errors.New("closed")})
	ok := &fakeSender{}
	hub.Subscribe("c1", "u1", ok)

	assert.Equal(t, 1, hub.Publish("c1", "u1", Event{Type: "notification"}))
	assert.Equal(t, 1, hub.Subscribers("c1", "u1"))
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop())
	id := hub.Subscribe("c1", "u1", &fakeSender{})
	assert.NotEmpty(t, id)

	hub.Unsubscribe("c1", "u1", id)
	assert.Equal(t, 0, hub.Subscribers("c1", "u1"))
	assert.Equal(t, 0, hub.Publish("c1", "u1", Event{}))
}
