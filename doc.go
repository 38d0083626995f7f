// Package forgedeck drives a Stream Deck+ dial that shows live player counts
// from the ForgeServ status API.
//
// Each dial instance on the device is a "context". A [Plugin] keeps one
// record per live context: its parsed [Preferences], an optional temporary
// index set by rotating the dial, and two timers (the poll timer and the
// override reset timer). All contexts share one server cache; every
// successful poll replaces it wholesale.
//
// # Quick Start
//
//	p, err := forgedeck.New(
//	    forgedeck.WithDisplay(forgedeck.DisplayFunc(func(context string, fb forgedeck.Feedback) error {
//	        return conn.SetFeedback(context, fb)
//	    })),
//	    forgedeck.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	go p.Run(ctx)
//
//	// forward host events
//	p.WillAppear(context, settings)
//	p.DialRotate(context, ticks)
//
// # Event Loop
//
// [Plugin.Run] owns every piece of per-context state. Host events, timer
// firings and poll completions are queued onto a single goroutine and run to
// completion one at a time, so no locks guard context state. Network fetches
// run on their own goroutines and report back through the same queue, which
// means a slow API never stalls dial rotation on another context.
//
// # Polling
//
// A context polls immediately when it appears and then reschedules itself
// after its refreshFrequency, read at scheduling time so changing the
// setting takes effect on the next cycle. A poll that fails in any way
// (non-200 status, transport error, malformed JSON) leaves the cache and the
// display untouched and is simply rescheduled.
//
// # Dial Override
//
// Rotating the dial scrolls away from the persisted serverIdx. Each rotation
// re-arms a single reset timer; once the dial has been idle for
// resetTimeout seconds the display returns to the persisted index.
package forgedeck
