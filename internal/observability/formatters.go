// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/pipeline"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow caps recognized text shown in a box
	maxLinesToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintCapture outputs what the OCR and vision providers read from a photo.
func (p *Printer) PrintCapture(res *pipeline.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("OCR:      %s", res.Meta.OCRProvider))
	if res.OCR.Demo {
		sb.WriteString(" (demo)")
	}
	sb.WriteString("\n")
	if res.Meta.AIProvider != "" {
		sb.WriteString(fmt.Sprintf("Vision:   %s\n", res.Meta.AIProvider))
	} else if res.Meta.AIEnabled {
		sb.WriteString("Vision:   no answer\n")
	}
	sb.WriteString("\n")

	lines := strings.Split(res.OCR.Text, "\n")
	for i, line := range lines {
		if i == maxLinesToShow {
			sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxLinesToShow))
			break
		}
		sb.WriteString(line + "\n")
	}

	if v := res.Vision; v != nil && !v.Empty() {
		sb.WriteString("\n")
		writeField(&sb, "Item", v.Item)
		writeField(&sb, "Colour", v.Colour)
		writeField(&sb, "Location", v.Location)
		writeField(&sb, "Quantity", string(v.Quantity))
		writeField(&sb, "Condition", v.Condition)
	}

	p.printBox("CAPTURE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeField(sb *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("%-10s%s\n", name+":", value))
}

// PrintRecord outputs the extracted values with their confidences.
func (p *Printer) PrintRecord(rec *types.ExtractedRecord) {
	if rec == nil {
		return
	}
	if rec.IsEmpty() {
		p.printBox("EXTRACTED RECORD", "Nothing recognized")
		return
	}

	var sb strings.Builder
	for _, key := range types.SemanticKeys {
		value, ok := rec.Get(key)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12s %s (%.0f%%)\n", string(key)+":", value, rec.ConfidenceFor(key, 0)*100))
	}
	if kind, ok := rec.Get(types.KeyItemType); ok {
		sb.WriteString(fmt.Sprintf("%-12s %s\n", "type:", kind))
	}

	p.printBox("EXTRACTED RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMappings outputs the proposed key-to-field assignments, indexed for --accept.
func (p *Printer) PrintMappings(ms []mapping.Mapping) {
	if len(ms) == 0 {
		p.printBox("MAPPINGS", "No field matched")
		return
	}

	var sb strings.Builder
	for i, m := range ms {
		mark := " "
		if m.Checked {
			mark = "x"
		}
		sb.WriteString(fmt.Sprintf("[%s] %d  %s → %s\n", mark, i, m.Key, m.Field.Label))
		sb.WriteString(fmt.Sprintf("       %q  %s, %.0f%%\n", m.Value, m.Method, m.Confidence*100))
	}

	p.printBox("MAPPINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintApplyResult outputs which mappings were written and which failed.
func (p *Printer) PrintApplyResult(res apply.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied %d, failed %d\n", len(res.Applied), len(res.Failed)))

	for _, m := range res.Applied {
		sb.WriteString(fmt.Sprintf("✓ %s = %s\n", m.Field.Label, m.Value))
	}
	for _, f := range res.Failed {
		sb.WriteString(fmt.Sprintf("⚠ %s: %s\n", f.Mapping.Field.Label, f.Err))
	}

	p.printBox("FILL", strings.TrimSuffix(sb.String(), "\n"))
}
