// Package poller fetches the status document from the remote API.
//
// This package is internal to forgedeck. It wraps an HTTP client with
// per-request timeouts, a pooled transport and a response size limit, and
// classifies the outcome of a poll: a body on 200 OK, a [*StatusError] for
// any other status, or a transport error.
//
// Scheduling is not done here. Each deck context owns its own self-
// rescheduling timer in the forgedeck package; this package only performs a
// single fetch when asked.
package poller
