package forgedeck

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// iconPrefix turns the API's base64 PNG into an inline image resource.
const iconPrefix = "data:image/png;base64,"

// emptyValue is shown instead of "0 of N".
const emptyValue = "Empty"

// Feedback is the title/value/icon triple pushed to a dial's touch strip.
type Feedback struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// NewFeedback projects a server record onto the display payload.
func NewFeedback(s Server) Feedback {
	value := emptyValue
	if s.Online != 0 {
		value = fmt.Sprintf("%d of %d", s.Online, s.Max)
	}
	return Feedback{
		Title: s.Name,
		Value: value,
		Icon:  iconPrefix + s.Icon,
	}
}

// Display is the device surface that receives rendered feedback.
type Display interface {
	SetFeedback(context string, fb Feedback) error
}

// DisplayFunc adapts a function to [Display].
type DisplayFunc func(context string, fb Feedback) error

// SetFeedback calls f.
func (f DisplayFunc) SetFeedback(context string, fb Feedback) error {
	return f(context, fb)
}

// render pushes the record selected for dc, if any. With an empty cache (or
// an index the cache does not hold) the display keeps what it last showed.
func (p *Plugin) render(dc *deckContext) {
	index, ok := p.resolve(dc)
	if !ok {
		return
	}
	srv, ok := p.cache.At(index)
	if !ok {
		return
	}

	fb := NewFeedback(Server(srv))
	p.pushFeedback(dc.id, fb)
}

// pushFeedback sends fb to the display and then to any feedback callbacks.
// Display errors are logged; a stale display is preferable to a crash.
func (p *Plugin) pushFeedback(context string, fb Feedback) {
	p.invokeSafe("display", context, func() {
		if err := p.display.SetFeedback(context, fb); err != nil {
			p.logger.Error("failed to set feedback",
				zap.String("context", context),
				zap.Error(err),
			)
		}
	})

	for _, cb := range p.feedbackCallbacks {
		p.invokeSafe("feedback callback", context, func() { cb(context, fb) })
	}
}

// invokeSafe runs fn with panic recovery. A panic is logged with a
// correlation ID and the full stack, and does not propagate into the loop.
func (p *Plugin) invokeSafe(what, context string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(what+" panicked",
				zap.String("correlation_id", uuid.NewString()),
				zap.String("context", context),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn()
}
