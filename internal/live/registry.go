// Package live keeps the per-owner set of open dashboard channels and fans messages out to them.
package live

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/metrics"
)

// Message types pushed to live channels.
const (
	MessageTypeNewSale     = "new_sale"
	MessageTypeRateUpdated = "rate_updated"
)

// Message is the envelope of every event pushed to a live channel.
type Message struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps payload with the current time.
func NewMessage(messageType string, payload any) Message {
	return Message{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Channel is one open connection able to receive messages.
type Channel interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// ChannelID identifies a registered channel. IDs are never reused within a process.
type ChannelID uint64

type entry struct {
	ch Channel

	// mu serialises sends with removal: once removed is set no further send starts.
	mu      sync.Mutex
	removed bool
}

// Registry maps owners to their open channels.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[ChannelID]*entry
	nextID   atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]map[ChannelID]*entry)}
}

// Register adds ch to owner's set and returns its id.
func (r *Registry) Register(owner string, ch Channel) ChannelID {
	id := ChannelID(r.nextID.Add(1))

	r.mu.Lock()
	set, ok := r.channels[owner]
	if !ok {
		set = make(map[ChannelID]*entry)
		r.channels[owner] = set
	}
	set[id] = &entry{ch: ch}
	r.mu.Unlock()

	metrics.LiveChannels.Inc()
	slog.Debug("live channel registered", slog.String("owner", owner), slog.Uint64("channel_id", uint64(id)))
	return id
}

// Unregister removes the channel from owner's set. It is safe to call while a broadcast to the
// same owner is running; once it returns the channel receives no further messages. The channel is
// not closed. Unregister reports whether the channel was registered.
func (r *Registry) Unregister(owner string, id ChannelID) bool {
	e := r.remove(owner, id)
	if e == nil {
		return false
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()

	metrics.LiveChannels.Dec()
	slog.Debug("live channel unregistered", slog.String("owner", owner), slog.Uint64("channel_id", uint64(id)))
	return true
}

func (r *Registry) remove(owner string, id ChannelID) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.channels[owner]
	if !ok {
		return nil
	}
	e, ok := set[id]
	if !ok {
		return nil
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.channels, owner)
	}
	return e
}

// Broadcast sends msg to every channel of owner and returns how many deliveries succeeded.
// A channel whose send fails is unregistered and closed; the other channels still receive msg.
func (r *Registry) Broadcast(ctx context.Context, owner string, msg Message) int {
	r.mu.RLock()
	targets := make(map[ChannelID]*entry, len(r.channels[owner]))
	for id, e := range r.channels[owner] {
		targets[id] = e
	}
	r.mu.RUnlock()

	return r.deliver(ctx, owner, targets, msg)
}

// BroadcastAll sends msg to every registered channel of every owner.
func (r *Registry) BroadcastAll(ctx context.Context, msg Message) int {
	r.mu.RLock()
	snapshot := make(map[string]map[ChannelID]*entry, len(r.channels))
	for owner, set := range r.channels {
		targets := make(map[ChannelID]*entry, len(set))
		for id, e := range set {
			targets[id] = e
		}
		snapshot[owner] = targets
	}
	r.mu.RUnlock()

	delivered := 0
	for owner, targets := range snapshot {
		delivered += r.deliver(ctx, owner, targets, msg)
	}
	return delivered
}

func (r *Registry) deliver(ctx context.Context, owner string, targets map[ChannelID]*entry, msg Message) int {
	delivered := 0
	for id, e := range targets {
		sent, err := e.send(ctx, msg)
		if err != nil {
			metrics.BroadcastFailures.Inc()
			slog.Warn("failed to deliver live message, dropping channel",
				slog.String("owner", owner), slog.Uint64("channel_id", uint64(id)), slog.Any("err", err))
			if r.Unregister(owner, id) {
				if cerr := e.ch.Close(); cerr != nil {
					slog.Debug("failed to close live channel", slog.Any("err", cerr))
				}
			}
			continue
		}
		if sent {
			delivered++
		}
	}
	return delivered
}

func (e *entry) send(ctx context.Context, msg Message) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false, nil
	}
	if err := e.ch.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of channels registered for owner.
func (r *Registry) Count(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[owner])
}

// CloseAll unregisters and closes every channel.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.channels
	r.channels = make(map[string]map[ChannelID]*entry)
	r.mu.Unlock()

	for _, set := range all {
		for _, e := range set {
			e.mu.Lock()
			e.removed = true
			e.mu.Unlock()
			metrics.LiveChannels.Dec()
			if err := e.ch.Close(); err != nil {
				slog.Debug("failed to close live channel", slog.Any("err", err))
			}
		}
	}
}
