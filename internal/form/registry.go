package form

import (
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// MinFormVisibility is the share of a form's height that must be on screen for it to be
// considered at all.
const MinFormVisibility = 0.15

// Registry holds the forms of the current document and the active one. The host calls
// Refresh whenever the page may have changed (after a debounce, on navigation, before a
// scan); nothing watches the document on its own.
type Registry struct {
	mu       sync.RWMutex
	doc      *goquery.Document
	layout   Layout
	forms    []Form
	active   int
	pinned   bool
	fields   []Field
	revision int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: -1}
}

// Refresh rescans doc. An explicitly selected form stays selected while it still exists.
func (r *Registry) Refresh(doc *goquery.Document, layout Layout) {
	if layout == nil {
		layout = StaticLayout{}
	}
	forms := Forms(doc)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = doc
	r.layout = layout
	r.forms = forms
	r.revision++
	if !r.pinned || r.active >= len(forms) {
		r.pinned = false
		r.active = PickActive(forms, layout)
	}
	r.fields = nil
	if r.active >= 0 {
		r.fields = Discover(forms[r.active], layout)
	}
}

// Select pins the form at index as active until the next Refresh that no longer has it.
func (r *Registry) Select(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.forms) {
		return fmt.Errorf("select form %d: %w", index, ErrNoForm)
	}
	r.active = index
	r.pinned = true
	r.fields = Discover(r.forms[index], r.layout)
	return nil
}

// SelectMatching pins the first form matched by a CSS selector.
func (r *Registry) SelectMatching(selector string) error {
	r.mu.RLock()
	forms := r.forms
	r.mu.RUnlock()

	for _, f := range forms {
		if f.Sel.Is(selector) {
			return r.Select(f.Index)
		}
	}
	return fmt.Errorf("select form %q: %w", selector, ErrNoForm)
}

// Active returns the active form and its fields.
func (r *Registry) Active() (Form, []Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active < 0 || r.active >= len(r.forms) {
		return Form{}, nil, ErrNoForm
	}
	fields := make([]Field, len(r.fields))
	copy(fields, r.fields)
	return r.forms[r.active], fields, nil
}

// Forms returns every form of the last refresh.
func (r *Registry) Forms() []Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Form(nil), r.forms...)
}

// Document returns the document of the last refresh.
func (r *Registry) Document() *goquery.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc
}

// Revision counts refreshes; it changes every time Refresh runs.
func (r *Registry) Revision() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// PickActive returns the index of the form with the largest visible area, or -1.
// Forms less than MinFormVisibility on screen are ignored and ties go to the form
// declared first. Without geometry a form's candidate control count stands in for area.
func PickActive(forms []Form, layout Layout) int {
	if layout == nil {
		layout = StaticLayout{}
	}
	best, bestScore := -1, -1.0
	for _, f := range forms {
		var score float64
		if box, ok := layout.Box(FormLocator(f.Index)); ok {
			if box.Height <= 0 {
				continue
			}
			if box.VisibleFraction(layout.Viewport()) < MinFormVisibility {
				continue
			}
			score = box.VisibleHeight(layout.Viewport()) * max(box.Width, 1)
		} else {
			score = float64(len(Discover(f, layout)))
		}
		if score > bestScore {
			best, bestScore = f.Index, score
		}
	}
	return best
}
