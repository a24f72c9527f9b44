package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/appycrew-ocr/internal/form"
)

// ErrNoNode is returned for controls that carry no parsed node.
var ErrNoNode = errors.New("control has no document node")

// Listener observes events fired by a DocumentWriter.
type Listener func(c form.Control, ev Event, s State)

// DocumentWriter writes into a parsed HTML document. Values become attributes (or text
// for textareas, selected/checked flags for choices), so rendering the document yields
// the filled form.
type DocumentWriter struct {
	mu        sync.Mutex
	listeners []Listener
}

// NewDocumentWriter creates a writer; listeners receive every dispatched event.
func NewDocumentWriter(listeners ...Listener) *DocumentWriter {
	return &DocumentWriter{listeners: listeners}
}

// OnEvent registers another listener.
func (w *DocumentWriter) OnEvent(l Listener) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	w.mu.Unlock()
}

// Read implements ElementWriter.
func (w *DocumentWriter) Read(_ context.Context, c form.Control) (State, error) {
	if c.Node == nil {
		return State{}, ErrNoNode
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	s := c.Selection()
	switch c.Kind {
	case form.KindTextarea:
		return State{Value: s.Text()}, nil
	case form.KindSelect:
		return State{Value: selectedValue(s)}, nil
	case form.KindRadio, form.KindCheckbox:
		_, checked := s.Attr("checked")
		v, _ := s.Attr("value")
		return State{Value: v, Checked: checked}, nil
	default:
		v, _ := s.Attr("value")
		return State{Value: v}, nil
	}
}

// Write implements ElementWriter.
func (w *DocumentWriter) Write(ctx context.Context, c form.Control, st State, events ...Event) error {
	if c.Node == nil {
		return ErrNoNode
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	s := c.Selection()
	switch c.Kind {
	case form.KindTextarea:
		s.SetText(st.Value)
	case form.KindSelect:
		if !selectOption(s, st.Value) {
			w.mu.Unlock()
			return fmt.Errorf("select %s: %w", c.Name, ErrNoMatch)
		}
	case form.KindRadio, form.KindCheckbox:
		if st.Checked {
			s.SetAttr("checked", "")
		} else {
			s.RemoveAttr("checked")
		}
	default:
		s.SetAttr("value", st.Value)
	}
	listeners := append([]Listener(nil), w.listeners...)
	w.mu.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(c, ev, st)
		}
	}
	return nil
}

// selectedValue mirrors the browser: the selected option, else the first one.
func selectedValue(s *goquery.Selection) string {
	opts := s.Find("option")
	chosen := opts.FilterFunction(func(_ int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	}).First()
	if chosen.Length() == 0 {
		chosen = opts.First()
	}
	if chosen.Length() == 0 {
		return ""
	}
	return optionValue(chosen)
}

func selectOption(s *goquery.Selection, value string) bool {
	opts := s.Find("option")
	target := opts.FilterFunction(func(_ int, o *goquery.Selection) bool {
		return optionValue(o) == value
	}).First()
	if target.Length() == 0 {
		return false
	}
	opts.RemoveAttr("selected")
	target.SetAttr("selected", "")
	return true
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(o.Text()), " ")
}
