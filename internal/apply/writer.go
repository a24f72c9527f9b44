package apply

import (
	"context"

	"github.com/jonathan/appycrew-ocr/internal/form"
)

// Event is a synthetic DOM event fired after a write.
type Event string

const (
	EventInput  Event = "input"
	EventChange Event = "change"
)

// State is what a control holds: its value and, for radios and checkboxes, whether it is
// checked.
type State struct {
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

// ElementWriter reads and writes control state in whatever environment hosts the form.
// Write must make the host's UI framework notice the change; the events listed are
// dispatched, bubbling, in order after the value is set.
type ElementWriter interface {
	Read(ctx context.Context, c form.Control) (State, error)
	Write(ctx context.Context, c form.Control, s State, events ...Event) error
}
