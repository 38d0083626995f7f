// Package server provides the diagnostic HTTP API for a running plugin.
//
// The API is off by default and only started when a debug address is
// configured. It exposes:
//
//   - Health: GET /healthz
//   - Cache: GET /api/servers returns the current server list snapshot
//   - Contexts: GET /api/contexts and GET /api/contexts/:id report each
//     dial's preferences, override and timer state
//   - Server-Sent Events: GET /api/sse streams every cache replacement
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
