package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

const inventoryPage = `<html><body>
<form id="search"><input name="q" placeholder="Search"></form>
<form id="inventory">
	<label for="f1">Item</label><input id="f1" name="f1">
	<label for="f2">Description</label><textarea id="f2" name="f2"></textarea>
	<label for="f3">Location</label><input id="f3" name="f3">
	<label for="f4">Quantity</label><input id="f4" name="f4" type="number">
</form>
</body></html>`

var wardrobe = types.RecognizedInput{RawText: "Wardrobe\nOak, large\nMaster bedroom\n2"}

func TestOpenHTML_MapsSelectedForm(t *testing.T) {
	job, err := openHTML(context.Background(), nil, strings.NewReader(inventoryPage),
		&sessionFlags{formSelector: "#inventory"}, wardrobe)
	require.NoError(t, err)
	defer job.close()

	require.NotNil(t, job.result.Form)
	assert.Equal(t, "inventory", job.result.Form.ID)

	byKey := map[types.Key]string{}
	for _, m := range job.sess.Mappings() {
		byKey[m.Key] = m.Field.Control.ID
	}
	assert.Equal(t, "f1", byKey[types.KeyItem])
	assert.Equal(t, "f3", byKey[types.KeyLocation])
	assert.Equal(t, "f4", byKey[types.KeyQuantity])
}

func TestOpenHTML_Errors(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		flags sessionFlags
		want  error
	}{
		{name: "no form", html: "<p>hello</p>", want: form.ErrNoForm},
		{name: "selector matches nothing", html: inventoryPage, flags: sessionFlags{formSelector: "#checkout"}, want: form.ErrNoForm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := openHTML(context.Background(), nil, strings.NewReader(tt.html), &tt.flags, wardrobe)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := openHTML(context.Background(), nil, strings.NewReader(inventoryPage),
		&sessionFlags{formSelector: "#inventory", accept: []int{42}}, wardrobe)
	assert.Error(t, err)
}

func TestFill(t *testing.T) {
	job, err := openHTML(context.Background(), nil, strings.NewReader(inventoryPage),
		&sessionFlags{formSelector: "#inventory"}, wardrobe)
	require.NoError(t, err)
	defer job.close()

	var out, status bytes.Buffer
	require.NoError(t, fill(context.Background(), job, false, &out, &status))

	html := out.String()
	assert.Contains(t, html, `id="f3" name="f3" value="Master bedroom"`)
	assert.Contains(t, html, `value="2"`)
	assert.Contains(t, status.String(), "Filled")
}

func TestFill_AcceptAndUndo(t *testing.T) {
	job, err := openHTML(context.Background(), nil, strings.NewReader(inventoryPage),
		&sessionFlags{formSelector: "#inventory", accept: []int{}}, wardrobe)
	require.NoError(t, err)
	defer job.close()

	var out, status bytes.Buffer
	require.NoError(t, fill(context.Background(), job, false, &out, &status))
	assert.NotContains(t, out.String(), "Master bedroom", "nothing accepted, nothing written")
	assert.Contains(t, status.String(), "Filled 0 fields")

	job, err = openHTML(context.Background(), nil, strings.NewReader(inventoryPage),
		&sessionFlags{formSelector: "#inventory"}, wardrobe)
	require.NoError(t, err)
	defer job.close()

	out.Reset()
	status.Reset()
	require.NoError(t, fill(context.Background(), job, true, &out, &status))
	assert.NotContains(t, out.String(), "Master bedroom")
	assert.Contains(t, status.String(), "Undo restored")
}
