package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/ocr"
	"github.com/jonathan/appycrew-ocr/internal/pipeline"
	"github.com/jonathan/appycrew-ocr/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintCapture(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCapture(&pipeline.Result{
		OCR:    ocr.Result{Text: "Wardrobe\nOak, large\nMaster bedroom", Provider: ocr.NameOCRSpace},
		Vision: &types.VisionResult{Item: "Wardrobe", Colour: "Oak", Quantity: "1"},
		Meta:   types.OCRMeta{OCRProvider: ocr.NameOCRSpace, AIProvider: "openai", AIEnabled: true},
	})
	output := buf.String()

	assert.Contains(t, output, "CAPTURE")
	assert.Contains(t, output, "ocr-space")
	assert.Contains(t, output, "openai")
	assert.Contains(t, output, "Master bedroom")
	assert.Contains(t, output, "Colour:   Oak")
	assert.NotContains(t, output, "Condition")
}

func TestPrintCapture_LongText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "line"
	}
	p.PrintCapture(&pipeline.Result{
		OCR:  ocr.Result{Text: strings.Join(lines, "\n"), Provider: ocr.NameDemo, Demo: true},
		Meta: types.OCRMeta{OCRProvider: ocr.NameDemo},
	})
	output := buf.String()

	assert.Contains(t, output, "demo (demo)")
	assert.Contains(t, output, "... and 4 more lines")
}

func TestPrintCapture_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCapture(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := types.NewRecord()
	rec.Set(types.KeyItem, "Sofa", 0.9)
	rec.Set(types.KeyLocation, "Living room", 0.7)
	rec.Set(types.KeyItemType, "furniture", 0.6)

	p.PrintRecord(rec)
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED RECORD")
	assert.Contains(t, output, "Sofa (90%)")
	assert.Contains(t, output, "Living room (70%)")
	assert.Contains(t, output, "furniture")
	assert.NotContains(t, output, "quantity")
}

func TestPrintRecord_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecord(types.NewRecord())
	assert.Contains(t, buf.String(), "Nothing recognized")
}

func TestPrintMappings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMappings([]mapping.Mapping{
		{Key: types.KeyItem, Value: "Sofa", Field: form.Field{Label: "Item"}, Checked: true, Method: mapping.MethodSemantic, Confidence: 0.9},
		{Key: types.KeyQuantity, Value: "2", Field: form.Field{Label: "Qty"}, Method: mapping.MethodTypeHint, Confidence: 0.6},
	})
	output := buf.String()

	assert.Contains(t, output, "[x] 0  item → Item")
	assert.Contains(t, output, "[ ] 1  quantity → Qty")
	assert.Contains(t, output, `"Sofa"  semantic, 90%`)
}

func TestPrintMappings_None(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMappings(nil)
	assert.Contains(t, buf.String(), "No field matched")
}

func TestPrintApplyResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintApplyResult(apply.Result{
		Applied: []mapping.Mapping{{Value: "Sofa", Field: form.Field{Label: "Item"}}},
		Failed:  []apply.Failure{{Mapping: mapping.Mapping{Field: form.Field{Label: "Room"}}, Err: "no matching choice"}},
	})
	output := buf.String()

	assert.Contains(t, output, "Applied 1, failed 1")
	assert.Contains(t, output, "✓ Item = Sofa")
	assert.Contains(t, output, "⚠ Room: no matching choice")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "überlän...", truncate("überlängerer text", 10))
}
