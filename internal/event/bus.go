// Package event provides a pub/sub event system for the board server using watermill.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/projboard/projboard/internal/logging"
)

// EventType represents the type of event.
type EventType string

const (
	ServerConnected EventType = "server.connected"
	ProjectsUpdated EventType = "projects.updated"
	ListRendered    EventType = "list.rendered"
)

// streamTopic is the watermill topic every published event is mirrored to.
const streamTopic = "board.events"

// streamBuffer is how many envelopes a stream holds for a slow reader before it drops frames.
const streamBuffer = 64

// Event represents an event to be published.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Envelope is an event as received from a stream, with its data still encoded.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Subscriber is a function that receives events.
type Subscriber func(event Event)

// subscriberEntry wraps a subscriber with an ID.
type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Bus is the event bus.
// Direct subscribers are called with the original typed Event; stream consumers receive the
// JSON form through a watermill GoChannel subscription.
type Bus struct {
	mu sync.RWMutex

	pubsub *gochannel.GoChannel

	subscribers map[EventType][]subscriberEntry
	global      []subscriberEntry

	nextID uint64
	closed bool
}

// NewBus creates a new event bus instance.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		subscribers: make(map[EventType][]subscriberEntry),
	}
}

// newID generates a unique subscriber ID.
func (b *Bus) newID() uint64 {
	return atomic.AddUint64(&b.nextID, 1)
}

// Subscribe registers a subscriber for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType EventType, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriberEntry{id: id, fn: fn})

	return func() {
		b.unsubscribe(eventType, id)
	}
}

// SubscribeAll registers a subscriber for all events.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.global = append(b.global, subscriberEntry{id: id, fn: fn})

	return func() {
		b.unsubscribeGlobal(id)
	}
}

func (b *Bus) unsubscribe(eventType EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, entry := range subs {
		if entry.id == id {
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
}

func (b *Bus) unsubscribeGlobal(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, entry := range b.global {
		if entry.id == id {
			b.global = append(b.global[:i:i], b.global[i+1:]...)
			break
		}
	}
}

// collect returns the subscribers for an event, or nil if the bus is closed.
func (b *Bus) collect(eventType EventType) ([]Subscriber, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, false
	}

	subs := make([]Subscriber, 0, len(b.subscribers[eventType])+len(b.global))
	for _, entry := range b.subscribers[eventType] {
		subs = append(subs, entry.fn)
	}
	for _, entry := range b.global {
		subs = append(subs, entry.fn)
	}
	return subs, true
}

// Publish sends an event to all subscribers asynchronously.
// Each subscriber is called in its own goroutine to prevent blocking.
func (b *Bus) Publish(event Event) {
	subs, ok := b.collect(event.Type)
	if !ok {
		return
	}

	for _, sub := range subs {
		go sub(event)
	}
	b.mirror(event)
}

// PublishSync sends an event to all subscribers synchronously.
// All direct subscribers are called in the current goroutine before returning; stream
// consumers are fed asynchronously.
func (b *Bus) PublishSync(event Event) {
	subs, ok := b.collect(event.Type)
	if !ok {
		return
	}

	for _, sub := range subs {
		sub(event)
	}
	b.mirror(event)
}

// mirror forwards the JSON form of an event to stream consumers.
func (b *Bus) mirror(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Warn().Err(err).Str("eventType", string(event.Type)).Msg("event not streamed: encode failed")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(streamTopic, msg); err != nil {
		logging.Debug().Err(err).Str("eventType", string(event.Type)).Msg("event not streamed")
	}
}

// Stream returns every event published after the call, decoded as envelopes.
// Delivery order between events is not guaranteed; event data carries versions where
// ordering matters. A reader that falls more than streamBuffer events behind loses the
// newest frames. The channel closes when ctx is done or the bus is closed.
func (b *Bus) Stream(ctx context.Context) (<-chan Envelope, error) {
	msgs, err := b.pubsub.Subscribe(ctx, streamTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan Envelope, streamBuffer)
	go func() {
		defer close(out)
		for msg := range msgs {
			var env Envelope
			err := json.Unmarshal(msg.Payload, &env)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Msg("stream message dropped: decode failed")
				continue
			}

			select {
			case out <- env:
			case <-ctx.Done():
				return
			default:
				logging.Warn().Str("eventType", string(env.Type)).Msg("stream message dropped: reader too slow")
			}
		}
	}()

	return out, nil
}

// Close closes the bus, drops all subscribers and ends every stream.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.subscribers = make(map[EventType][]subscriberEntry)
	b.global = nil
	b.mu.Unlock()

	return b.pubsub.Close()
}

// PubSub returns the underlying watermill GoChannel for advanced use cases.
func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubsub
}
