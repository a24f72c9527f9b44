package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/form"
)

func TestMeasurement_Layout(t *testing.T) {
	raw := `{
		"viewport": {"x": 0, "y": 0, "width": 1280, "height": 800},
		"forms": [
			{"box": {"x": 10, "y": 900, "width": 400, "height": 300}, "controls": []},
			{"box": {"x": 10, "y": 20, "width": 400, "height": 300},
			 "controls": [{"x": 20, "y": 40, "width": 200, "height": 24}, {"x": 20, "y": 80, "width": 200, "height": 24}]}
		]
	}`
	var m measurement
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	l := m.layout()
	assert.Equal(t, form.Rect{Width: 1280, Height: 800}, l.Viewport())

	box, ok := l.Box(form.FormLocator(0))
	require.True(t, ok)
	assert.Zero(t, box.VisibleFraction(l.Viewport()), "first form is below the fold")

	box, ok = l.Box(form.Locator{Form: 1, Control: 1})
	require.True(t, ok)
	assert.Equal(t, form.Rect{X: 20, Y: 80, Width: 200, Height: 24}, box)

	_, ok = l.Box(form.Locator{Form: 1, Control: 2})
	assert.False(t, ok)
}

func TestLocateJS(t *testing.T) {
	js := locateJS(form.Locator{Form: 2, Control: 5})
	assert.Equal(t, `(document.querySelectorAll('form')[2]?.querySelectorAll("input, textarea, select")[5])`, js)
}

func TestWriteJS_EncodesArguments(t *testing.T) {
	js, err := writeJS(form.Locator{Form: 0, Control: 1},
		apply.State{Value: `O'Brien "quoted"`, Checked: true},
		[]apply.Event{apply.EventInput, apply.EventChange})
	require.NoError(t, err)

	assert.Contains(t, js, `(...["O'Brien \"quoted\"",true,["input","change"]])`)
	assert.Contains(t, js, "getOwnPropertyDescriptor(proto, 'value').set")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		c    form.Control
		want string
	}{
		{name: "id", c: form.Control{ID: "qty", Name: "quantity"}, want: "#qty"},
		{name: "name", c: form.Control{Name: "quantity"}, want: "quantity"},
		{name: "locator", c: form.Control{Locator: form.Locator{Form: 1, Control: 3}}, want: "control 3 of form 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.c))
		})
	}
}

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("Skipping browser test: Chrome/Chromium not installed")
}

const livePage = `<!doctype html><html><body>
<form id="inventory">
  <label for="item">Item</label><input id="item" name="item">
  <label for="room">Room</label>
  <select id="room" name="room"><option value="">--</option><option value="kitchen">Kitchen</option></select>
  <label><input type="checkbox" id="fragile" name="fragile"> Fragile</label>
</form>
<script>
  window.seen = [];
  document.getElementById('item').addEventListener('input', e => window.seen.push(e.target.value));
</script>
</body></html>`

func TestIntegration_Page(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, livePage)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page, err := Open(ctx, srv.URL, Options{Timeout: time.Minute})
	require.NoError(t, err)
	defer page.Close()

	doc, err := page.Snapshot(ctx)
	require.NoError(t, err)
	forms := form.Forms(doc)
	require.Len(t, forms, 1)

	layout, err := page.Measure(ctx)
	require.NoError(t, err)
	fields := form.Discover(forms[0], layout)
	require.Len(t, fields, 3)

	w := page.Writer()
	item := fields[0].Control
	require.NoError(t, w.Write(ctx, item, apply.State{Value: "Sofa"}, apply.EventInput, apply.EventChange))
	got, err := w.Read(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "Sofa", got.Value)

	var seen []string
	require.NoError(t, page.run(ctx, chromedp.Evaluate("window.seen", &seen)))
	assert.Equal(t, []string{"Sofa"}, seen)

	room := fields[1].Control
	require.NoError(t, w.Write(ctx, room, apply.State{Value: "kitchen"}, apply.EventChange))
	err = w.Write(ctx, room, apply.State{Value: "garage"}, apply.EventChange)
	assert.ErrorIs(t, err, apply.ErrNoMatch)

	fragile := fields[2].Control
	require.NoError(t, w.Write(ctx, fragile, apply.State{Checked: true}, apply.EventChange))
	got, err = w.Read(ctx, fragile)
	require.NoError(t, err)
	assert.True(t, got.Checked)

	_, err = w.Read(ctx, form.Control{Locator: form.Locator{Form: 3, Control: 0}})
	assert.ErrorIs(t, err, ErrNoElement)
}
