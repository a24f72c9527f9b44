package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/form"
)

// ErrNoElement is returned when a locator no longer points at an element, usually
// because the page changed since it was measured.
var ErrNoElement = errors.New("element not found in page")

// Writer fills controls of a live page. Values go through the native value setter so
// frameworks that track input state (React, Vue) see the change.
type Writer struct {
	page *Page
}

// Writer returns an apply.ElementWriter bound to p.
func (p *Page) Writer() *Writer {
	return &Writer{page: p}
}

type writeResult struct {
	Status string `json:"status"`
}

// Read implements apply.ElementWriter.
func (w *Writer) Read(ctx context.Context, c form.Control) (apply.State, error) {
	var out struct {
		Found   bool   `json:"found"`
		Value   string `json:"value"`
		Checked bool   `json:"checked"`
	}
	if err := w.page.run(ctx, chromedp.Evaluate(readJS(c.Locator), &out)); err != nil {
		return apply.State{}, fmt.Errorf("failed to read %s: %w", describe(c), err)
	}
	if !out.Found {
		return apply.State{}, fmt.Errorf("%s: %w", describe(c), ErrNoElement)
	}
	return apply.State{Value: out.Value, Checked: out.Checked}, nil
}

// Write implements apply.ElementWriter.
func (w *Writer) Write(ctx context.Context, c form.Control, s apply.State, events ...apply.Event) error {
	script, err := writeJS(c.Locator, s, events)
	if err != nil {
		return err
	}
	var res writeResult
	if err := w.page.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return fmt.Errorf("failed to write %s: %w", describe(c), err)
	}
	switch res.Status {
	case "ok":
		return nil
	case "nomatch":
		return fmt.Errorf("select %s: %w", describe(c), apply.ErrNoMatch)
	default:
		return fmt.Errorf("%s: %w", describe(c), ErrNoElement)
	}
}

func describe(c form.Control) string {
	switch {
	case c.ID != "":
		return "#" + c.ID
	case c.Name != "":
		return c.Name
	default:
		return fmt.Sprintf("control %d of form %d", c.Locator.Control, c.Locator.Form)
	}
}

func readJS(loc form.Locator) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return {found: false};
	return {found: true, value: String(el.value ?? ''), checked: !!el.checked};
})()`, locateJS(loc))
}

func writeJS(loc form.Locator, s apply.State, events []apply.Event) (string, error) {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = string(ev)
	}
	args, err := json.Marshal([]any{s.Value, s.Checked, names})
	if err != nil {
		return "", fmt.Errorf("failed to encode write: %w", err)
	}
	return fmt.Sprintf(`((value, checked, events) => {
	const el = %s;
	if (!el) return {status: 'missing'};
	if (el.type === 'radio' || el.type === 'checkbox') {
		el.checked = checked;
	} else {
		const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
			: el instanceof HTMLSelectElement ? HTMLSelectElement.prototype
			: HTMLInputElement.prototype;
		Object.getOwnPropertyDescriptor(proto, 'value').set.call(el, value);
		if (el instanceof HTMLSelectElement && el.value !== value) return {status: 'nomatch'};
	}
	for (const name of events) el.dispatchEvent(new Event(name, {bubbles: true}));
	return {status: 'ok'};
})(...%s)`, locateJS(loc), args), nil
}
