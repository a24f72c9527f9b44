// Package apply writes accepted mappings into form controls and keeps a one-level
// snapshot so the last apply can be undone.
package apply

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
)

// ErrNoMatch is returned when a select or radio group has no choice for the value.
var ErrNoMatch = errors.New("no matching choice")

// Entry is one control's state before the last apply.
type Entry struct {
	Control  form.Control `json:"control"`
	Previous State        `json:"previous"`
}

// Snapshot lists controls in the order they were first touched by an apply.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// Result summarizes an apply.
type Result struct {
	Applied []mapping.Mapping `json:"applied"`
	Failed  []Failure         `json:"failed,omitempty"`
}

// Failure is a mapping that could not be written.
type Failure struct {
	Mapping mapping.Mapping `json:"mapping"`
	Err     string          `json:"error"`
}

// Mutator applies mappings through an ElementWriter. It keeps at most one snapshot.
type Mutator struct {
	writer ElementWriter

	mu       sync.Mutex
	snapshot *Snapshot
}

// New creates a Mutator.
func New(w ElementWriter) *Mutator {
	return &Mutator{writer: w}
}

// Writer returns the writer the mutator uses.
func (m *Mutator) Writer() ElementWriter { return m.writer }

// HasSnapshot reports whether an undo is available.
func (m *Mutator) HasSnapshot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil
}

// Snapshot returns a copy of the current snapshot, or nil.
func (m *Mutator) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil
	}
	return &Snapshot{Entries: append([]Entry(nil), m.snapshot.Entries...)}
}

// Discard drops the snapshot without restoring anything.
func (m *Mutator) Discard() {
	m.mu.Lock()
	m.snapshot = nil
	m.mu.Unlock()
}

// Apply writes every checked mapping. The previous snapshot is replaced; when no mapping
// is checked the mutator is left without one. A mapping that cannot be written is
// recorded in the result and skipped.
func (m *Mutator) Apply(ctx context.Context, mappings []mapping.Mapping) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var checked []mapping.Mapping
	for _, mp := range mappings {
		if mp.Checked {
			checked = append(checked, mp)
		}
	}
	if len(checked) == 0 {
		m.snapshot = nil
		return Result{}
	}

	snap := &Snapshot{}
	recorded := map[form.Locator]bool{}
	remember := func(c form.Control) error {
		if recorded[c.Locator] {
			return nil
		}
		prev, err := m.writer.Read(ctx, c)
		if err != nil {
			return fmt.Errorf("read %s: %w", describe(c), err)
		}
		recorded[c.Locator] = true
		snap.Entries = append(snap.Entries, Entry{Control: c, Previous: prev})
		return nil
	}

	var res Result
	for _, mp := range checked {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{Mapping: mp, Err: err.Error()})
			continue
		}
		if err := m.write(ctx, mp, remember); err != nil {
			log.Printf("[apply] skipped %q (%s): %v", mp.Field.Label, mp.Key, err)
			res.Failed = append(res.Failed, Failure{Mapping: mp, Err: err.Error()})
			continue
		}
		res.Applied = append(res.Applied, mp)
	}

	m.snapshot = snap
	return res
}

func (m *Mutator) write(ctx context.Context, mp mapping.Mapping, remember func(form.Control) error) error {
	f := mp.Field
	switch f.Kind() {
	case form.KindSelect:
		opt, ok := ResolveOption(f.Options, mp.Value)
		if !ok {
			return fmt.Errorf("select %q: %w", mp.Value, ErrNoMatch)
		}
		if err := remember(f.Control); err != nil {
			return err
		}
		return m.writer.Write(ctx, f.Control, State{Value: opt.Value}, EventChange)

	case form.KindRadio:
		group := f.Group
		if len(group) == 0 {
			group = []form.Control{f.Control}
		}
		target, ok := ResolveRadio(group, mp.Value)
		if !ok {
			return fmt.Errorf("radio %q: %w", mp.Value, ErrNoMatch)
		}
		for _, c := range group {
			if err := remember(c); err != nil {
				return err
			}
		}
		for _, c := range group {
			if c.Locator == target.Locator {
				continue
			}
			if err := m.writer.Write(ctx, c, State{Value: c.Value, Checked: false}); err != nil {
				return err
			}
		}
		return m.writer.Write(ctx, target, State{Value: target.Value, Checked: true}, EventChange)

	case form.KindCheckbox:
		if err := remember(f.Control); err != nil {
			return err
		}
		return m.writer.Write(ctx, f.Control, State{Value: f.Control.Value, Checked: Truthy(mp.Value)}, EventChange)

	default:
		if err := remember(f.Control); err != nil {
			return err
		}
		return m.writer.Write(ctx, f.Control, State{Value: mp.Value}, EventInput, EventChange)
	}
}

// Undo restores every control in the snapshot, in order, and discards the snapshot. It
// returns the number of controls restored; without a snapshot it does nothing.
func (m *Mutator) Undo(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot == nil {
		return 0
	}
	snap := m.snapshot
	m.snapshot = nil

	restored := 0
	for _, e := range snap.Entries {
		if err := m.writer.Write(ctx, e.Control, e.Previous, eventsFor(e.Control.Kind)...); err != nil {
			log.Printf("[apply] undo skipped %s: %v", describe(e.Control), err)
			continue
		}
		restored++
	}
	return restored
}

func eventsFor(kind form.Kind) []Event {
	switch kind {
	case form.KindText, form.KindTextarea:
		return []Event{EventInput, EventChange}
	default:
		return []Event{EventChange}
	}
}

func describe(c form.Control) string {
	switch {
	case c.Name != "":
		return c.Name
	case c.ID != "":
		return "#" + c.ID
	}
	return fmt.Sprintf("control %d of form %d", c.Locator.Control, c.Locator.Form)
}
