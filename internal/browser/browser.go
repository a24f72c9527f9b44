// Package browser drives a headless Chrome page so forms can be discovered, measured and
// filled on live, JavaScript-rendered sites.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/appycrew-ocr/internal/form"
)

// DefaultTimeout bounds the whole life of a page.
const DefaultTimeout = 2 * time.Minute

// DefaultSettle is how long a page gets to render after the body is ready.
const DefaultSettle = 2 * time.Second

// Options configures a page.
type Options struct {
	Timeout time.Duration
	Settle  time.Duration
	// Headful shows the browser window, which is handy when debugging a site.
	Headful bool
	Verbose bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, Settle: DefaultSettle}
}

// Page is an open browser tab. Requires Chrome/Chromium to be installed on the system.
type Page struct {
	ctx     context.Context
	cancels []context.CancelFunc
	url     string
	verbose bool
}

// Open starts a browser, navigates to url and waits for the page to settle.
func Open(ctx context.Context, url string, opts Options) (*Page, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", !opts.Headful),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)

	p := &Page{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelTimeout, cancelBrowser, cancelAlloc},
		url:     url,
		verbose: opts.Verbose,
	}

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if opts.Settle > 0 {
		actions = append(actions, chromedp.Sleep(opts.Settle))
	}
	// Cookie banners often cover the form; a missing button is fine.
	actions = append(actions, chromedp.Evaluate(dismissBannersJS, nil))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	return p, nil
}

// Close shuts the browser down.
func (p *Page) Close() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

// URL returns the address the page was opened at.
func (p *Page) URL() string { return p.url }

// run executes actions in the page, aborting when either ctx or the page ends.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Snapshot returns the page's current DOM, parsed. Control values typed by the user are
// not attributes, so Snapshot reflects the markup rather than live input state.
func (p *Page) Snapshot(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}
	if p.verbose {
		log.Printf("[BROWSER] Snapshot: %d bytes", len(html))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return doc, nil
}

// Measure returns the viewport and the bounding box of every form and control.
func (p *Page) Measure(ctx context.Context) (*form.RectLayout, error) {
	var m measurement
	if err := p.run(ctx, chromedp.Evaluate(measureJS, &m)); err != nil {
		return nil, fmt.Errorf("failed to measure page: %w", err)
	}
	return m.layout(), nil
}

// measurement is what measureJS returns.
type measurement struct {
	Viewport form.Rect `json:"viewport"`
	Forms    []struct {
		Box      form.Rect   `json:"box"`
		Controls []form.Rect `json:"controls"`
	} `json:"forms"`
}

func (m measurement) layout() *form.RectLayout {
	l := form.NewRectLayout(m.Viewport)
	for i, f := range m.Forms {
		l.Set(form.FormLocator(i), f.Box)
		for j, box := range f.Controls {
			l.Set(form.Locator{Form: i, Control: j}, box)
		}
	}
	return l
}

// locateJS is a JS expression evaluating to the element at loc, or undefined. It walks
// the DOM the same way form.Forms and form.Form.Controls do.
func locateJS(loc form.Locator) string {
	selector, _ := json.Marshal(form.ControlSelector)
	return fmt.Sprintf("(document.querySelectorAll('form')[%d]?.querySelectorAll(%s)[%d])",
		loc.Form, selector, loc.Control)
}

var measureJS = fmt.Sprintf(`(() => {
	const box = el => {
		const r = el.getBoundingClientRect();
		return {x: r.left, y: r.top, width: r.width, height: r.height};
	};
	const forms = Array.from(document.querySelectorAll('form')).map(f => ({
		box: box(f),
		controls: Array.from(f.querySelectorAll(%q)).map(box),
	}));
	return {viewport: {x: 0, y: 0, width: window.innerWidth, height: window.innerHeight}, forms};
})()`, form.ControlSelector)

const dismissBannersJS = `(() => {
	const buttons = document.querySelectorAll('button[id*="accept" i], button[class*="accept" i]');
	for (const b of buttons) {
		if (b.offsetParent !== null) { b.click(); return true; }
	}
	return false;
})()`
