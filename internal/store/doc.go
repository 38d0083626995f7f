// Package store holds the shared server cache and publishes replacements.
//
// This package is internal to forgedeck. Every deck context reads the same
// cache; each successful poll replaces its contents wholesale, so the last
// poll to complete wins. Subscribers (the debug API's SSE stream) receive
// every replacement via buffered channels with non-blocking sends: slow
// subscribers miss updates rather than stall the plugin.
//
// The main components are:
//
//   - [Store]: Interface defining cache and subscription operations
//   - [MemoryStore]: In-memory implementation of Store
//   - [Snapshot]: One cache generation with its source and timestamp
package store
