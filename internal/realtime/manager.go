package realtime

import (
	"context"
	"sort"
	"sync"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

// Spec describes one subscription: which rows to watch and which cache
// prefixes to invalidate when they change.
type Spec struct {
	Table  constants.Table
	Filter Filter
	// Events restricts delivery, all events when empty
	Events     []EventType
	Invalidate []cache.Key
}

func (s Spec) wants(t EventType) bool {
	if len(s.Events) == 0 {
		return true
	}
	for _, e := range s.Events {
		if e == EventAll || e == t {
			return true
		}
	}
	return false
}

// channel is one logical (table, filter) stream shared by every
// subscription with the same name.
type channel struct {
	name        string
	table       constants.Table
	filter      Filter
	listeners   map[int]*Subscription
	unsubscribe func() error
}

// Manager opens logical channels on a Feed and turns matching changes into
// invalidation events on the bus.
type Manager struct {
	feed    Feed
	pub     bus.Publisher
	metrics *metrics.MetricsRegistry

	mu       sync.Mutex
	nextID   int
	channels map[string]*channel
}

func NewManager(feed Feed, pub bus.Publisher, m *metrics.MetricsRegistry) *Manager {
	return &Manager{
		feed:     feed,
		pub:      pub,
		metrics:  m,
		channels: make(map[string]*channel),
	}
}

// Subscribe joins or opens the channel for spec. Transport failures are
// logged and counted, never returned: the caller still gets a Subscription
// and the pull path keeps working.
func (m *Manager) Subscribe(ctx context.Context, spec Spec) *Subscription {
	name := ChannelName(spec.Table, spec.Filter)

	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[name]
	if !ok {
		ch = &channel{
			name:      name,
			table:     spec.Table,
			filter:    spec.Filter,
			listeners: make(map[int]*Subscription),
		}
		unsub, err := m.feed.Subscribe(ctx, spec.Table, func(c Change) { m.dispatch(ch, c) })
		if err != nil {
			m.metrics.RealtimeError(spec.Table.String(), "subscribe")
			logging.Error("Realtime subscription failed", "channel", name, "error", err.Error())
			return &Subscription{name: name, spec: spec}
		}
		ch.unsubscribe = unsub
		m.channels[name] = ch
		m.metrics.SetRealtimeChannels(len(m.channels))
		logging.Debug("Realtime channel opened", "channel", name)
	}

	sub := &Subscription{m: m, name: name, id: m.nextID, spec: spec}
	m.nextID++
	ch.listeners[sub.id] = sub
	return sub
}

func (m *Manager) dispatch(ch *channel, c Change) {
	if !ch.filter.Matches(c) {
		return
	}
	m.metrics.RealtimeEvent(c.Table.String(), string(c.Type))

	m.mu.Lock()
	var keys []cache.Key
	for _, sub := range ch.listeners {
		if sub.spec.wants(c.Type) {
			keys = append(keys, sub.spec.Invalidate...)
		}
	}
	m.mu.Unlock()

	for _, k := range keys {
		if err := m.pub.Publish(context.Background(), bus.Event{Key: k, Source: bus.SourceRealtime}); err != nil {
			m.metrics.RealtimeError(c.Table.String(), "publish")
			logging.Warn("Dropping realtime invalidation", "channel", ch.name, "key", k.String(), "error", err.Error())
		}
	}
}

func (m *Manager) release(sub *Subscription) {
	m.mu.Lock()
	ch, ok := m.channels[sub.name]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(ch.listeners, sub.id)
	if len(ch.listeners) > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.channels, sub.name)
	m.metrics.SetRealtimeChannels(len(m.channels))
	m.mu.Unlock()

	if err := ch.unsubscribe(); err != nil {
		logging.Warn("Realtime unsubscribe failed", "channel", sub.name, "error", err.Error())
	}
	logging.Debug("Realtime channel closed", "channel", sub.name)
}

// ActiveChannels lists open channel names, sorted
func (m *Manager) ActiveChannels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Ping reports the transport health
func (m *Manager) Ping(ctx context.Context) error {
	return m.feed.Ping(ctx)
}

// Close releases every channel
func (m *Manager) Close() {
	m.mu.Lock()
	chans := m.channels
	m.channels = make(map[string]*channel)
	m.metrics.SetRealtimeChannels(0)
	m.mu.Unlock()

	for _, ch := range chans {
		_ = ch.unsubscribe()
	}
}

// Subscription is a handle on a logical channel. Close is idempotent.
type Subscription struct {
	m    *Manager
	name string
	id   int
	spec Spec
	once sync.Once
}

// Channel is the logical channel name
func (s *Subscription) Channel() string {
	return s.name
}

// Active is false when the transport refused the subscription
func (s *Subscription) Active() bool {
	return s.m != nil
}

func (s *Subscription) Close() {
	if s == nil || s.m == nil {
		return
	}
	s.once.Do(func() { s.m.release(s) })
}
