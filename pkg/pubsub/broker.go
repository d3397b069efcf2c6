package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/resection-analyzer/pkg/logging"
)

// subscriberBuffer bounds each subscriber's backlog
const subscriberBuffer = 64

// TopicConfig configures replay for late subscribers
type TopicConfig struct {
	BufferSize int  // Events kept for replay (0 = none)
	ReplayAll  bool // Replay the whole buffer instead of only the latest event
}

// Broker is an in-process Publisher whose events are streamed to HTTP
// clients as Server-Sent Events
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
	closed bool
}

type topic struct {
	config  TopicConfig
	version int
	history []Event
	subs    map[*subscription]struct{}
}

// NewBroker creates a broker. Run progress on TopicReports keeps the last
// run's events so a client connecting mid-run sees where it stands.
func NewBroker() *Broker {
	b := &Broker{topics: make(map[string]*topic)}
	b.ConfigureTopic(TopicReports, TopicConfig{BufferSize: 256, ReplayAll: true})
	return b
}

// ConfigureTopic sets replay behaviour for a topic
func (b *Broker) ConfigureTopic(name string, config TopicConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topic(name).config = config
}

// topic returns the named topic, creating it. Callers hold b.mu.
func (b *Broker) topic(name string) *topic {
	t, ok := b.topics[name]
	if !ok {
		t = &topic{subs: make(map[*subscription]struct{})}
		b.topics[name] = t
	}
	return t
}

// Subscribe registers a subscriber and replays buffered events to it. The
// subscription closes when ctx ends.
func (b *Broker) Subscribe(ctx context.Context, name string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("publisher is closed")
	}

	t := b.topic(name)
	sub := &subscription{
		name:   name,
		events: make(chan Event, subscriberBuffer),
		broker: b,
	}

	replay := t.history
	if !t.config.ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	for _, ev := range replay {
		select {
		case sub.events <- ev:
		default:
			logging.Warn("replay truncated for new subscriber", "topic", name)
		}
	}
	t.subs[sub] = struct{}{}
	logging.Debug("subscribed", "topic", name, "replayed", len(replay), "subscribers", len(t.subs))

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish delivers an event to every current subscriber of a topic
func (b *Broker) Publish(name, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("publisher is closed")
	}

	t := b.topic(name)
	t.version++
	ev := Event{Topic: name, Type: eventType, Data: payload, Version: t.version}

	if t.config.BufferSize > 0 {
		t.history = append(t.history, ev)
		if over := len(t.history) - t.config.BufferSize; over > 0 {
			t.history = t.history[over:]
		}
	}

	for sub := range t.subs {
		select {
		case sub.events <- ev:
		default:
			// Slow subscribers lose events rather than stall a report run
			logging.Warn("subscriber backlog full, dropping event", "topic", name, "type", eventType)
		}
	}
	return nil
}

// Close ends every subscription. Further publishes fail.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, t := range b.topics {
		for sub := range t.subs {
			sub.finish()
		}
		t.subs = nil
	}
	return nil
}

func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[sub.name]; ok && t.subs != nil {
		if _, ok := t.subs[sub]; ok {
			delete(t.subs, sub)
			sub.finish()
		}
	}
}

type subscription struct {
	name   string
	events chan Event
	broker *Broker
	once   sync.Once
}

func (s *subscription) Topic() string {
	return s.name
}

// Events is closed once the subscription ends
func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Close() error {
	s.broker.unsubscribe(s)
	return nil
}

// finish closes the event channel. Callers hold the broker lock, so no
// publish can race with it.
func (s *subscription) finish() {
	s.once.Do(func() { close(s.events) })
}

// WriteSSE writes one event in text/event-stream framing
func WriteSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Version, ev.Type, data)
	return err
}
