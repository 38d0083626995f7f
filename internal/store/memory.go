package store

import (
	"slices"
	"sync"
)

// pendingReplacements is how many unread snapshots a subscriber may hold
// before further ones are dropped for it.
const pendingReplacements = 16

type subscriber struct {
	ch      chan Snapshot
	dropped uint64
}

// MemoryStore is an in-memory implementation of [Store].
//
// The held snapshot is never mutated after Replace; readers that need to
// hand servers outside the store get a clone.
type MemoryStore struct {
	mu          sync.RWMutex
	snap        Snapshot
	generation  uint64
	subscribers []*subscriber
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Replace stores snap as the current generation and fans it out to
// subscribers. The server slice is cloned; the caller may reuse it.
func (m *MemoryStore) Replace(snap Snapshot) {
	snap.Servers = slices.Clone(snap.Servers)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = snap
	m.generation++
	for _, sub := range m.subscribers {
		select {
		case sub.ch <- snap:
		default:
			sub.dropped++
		}
	}
}

// Generation counts how many times the cache has been replaced.
func (m *MemoryStore) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Current returns a copy of the latest snapshot.
func (m *MemoryStore) Current() Snapshot {
	m.mu.RLock()
	snap := m.snap
	m.mu.RUnlock()

	snap.Servers = slices.Clone(snap.Servers)
	return snap
}

// Len returns the number of cached servers.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snap.Servers)
}

// At returns the server at index i.
func (m *MemoryStore) At(i int) (Server, bool) {
	m.mu.RLock()
	servers := m.snap.Servers
	m.mu.RUnlock()

	if i < 0 || i >= len(servers) {
		return Server{}, false
	}
	return servers[i], true
}

// Subscribe registers a new listener for replacements. Once its buffer is
// full, later snapshots are dropped for that listener only.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	sub := &subscriber{ch: make(chan Snapshot, pendingReplacements)}

	m.mu.Lock()
	m.subscribers = append(m.subscribers, sub)
	m.mu.Unlock()

	return sub.ch
}

// Unsubscribe removes the listener and closes its channel. Unknown or
// already removed channels are ignored.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.subscribers, func(s *subscriber) bool {
		return (<-chan Snapshot)(s.ch) == ch
	})
	if i < 0 {
		return
	}
	close(m.subscribers[i].ch)
	m.subscribers = slices.Delete(m.subscribers, i, i+1)
}

// Dropped reports how many snapshots were discarded for ch because its
// buffer was full.
func (m *MemoryStore) Dropped(ch <-chan Snapshot) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		if (<-chan Snapshot)(sub.ch) == ch {
			return sub.dropped
		}
	}
	return 0
}
