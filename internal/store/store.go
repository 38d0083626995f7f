package store

import "time"

// Server is the storage representation of one record from the status API.
type Server struct {
	Name   string `json:"name"`
	Online int    `json:"online"`
	Max    int    `json:"max"`
	Icon   string `json:"icon"`
}

// Snapshot is one generation of the cache.
type Snapshot struct {
	// Servers is the ordered record list as returned by the API.
	Servers []Server `json:"servers"`

	// Context identifies the deck context whose poll produced this snapshot.
	Context string `json:"context"`

	// UpdatedAt is when the snapshot replaced the previous one.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the shared cache and its subscription operations.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Replace swaps in a new snapshot and notifies all subscribers.
	Replace(snap Snapshot)

	// Current returns a copy of the latest snapshot.
	Current() Snapshot

	// Len returns the number of cached servers.
	Len() int

	// At returns the server at index i, or false if i is out of range.
	At(i int) (Server, bool)

	// Generation counts replacements since the store was created.
	Generation() uint64

	// Subscribe returns a channel that receives every replacement.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)

	// Dropped reports how many snapshots a full subscriber channel missed.
	Dropped(ch <-chan Snapshot) uint64
}
