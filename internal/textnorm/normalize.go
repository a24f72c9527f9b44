// Package textnorm cleans raw OCR text before extraction: it drops bare label lines,
// strips "Label: value" prefixes and removes brand/handling noise printed on boxes.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLabelWords are form labels that OCR picks up from printed inventory sheets.
var DefaultLabelWords = []string{
	"item",
	"type",
	"description",
	"qty",
	"quantity",
	"location",
	"name",
	"client",
	"driver",
	"surveyor",
	"job number",
	"job no",
	"container number",
	"container no",
	"additional information",
	"container level",
	"date",
}

// DefaultNoiseWords are brand and handling phrases printed on boxes and tape.
var DefaultNoiseWords = []string{
	"appycrew",
	"fragile",
	"handle with care",
	"this side up",
	"heavy",
	"do not stack",
	"keep dry",
}

var (
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRun       = regexp.MustCompile(`[ \t\f\v]+`)
	labelSeparator = regexp.MustCompile(`[:=\-]`)
)

// Normalizer removes labels and noise from OCR text.
// A Normalizer is immutable after construction and safe for concurrent use.
type Normalizer struct {
	labels map[string]bool
	noise  *regexp.Regexp
}

// New builds a Normalizer from label and noise word lists.
func New(labelWords, noiseWords []string) *Normalizer {
	n := &Normalizer{labels: make(map[string]bool, len(labelWords))}
	for _, w := range labelWords {
		if key := NormalizeLabel(w); key != "" {
			n.labels[key] = true
		}
	}

	var parts []string
	for _, w := range noiseWords {
		fields := strings.Fields(strings.ToLower(w))
		if len(fields) == 0 {
			continue
		}
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = regexp.QuoteMeta(f)
		}
		parts = append(parts, strings.Join(quoted, `\s+`))
	}
	if len(parts) > 0 {
		n.noise = regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
	}
	return n
}

// Default returns a Normalizer over the built-in label and noise lists.
func Default() *Normalizer {
	return New(DefaultLabelWords, DefaultNoiseWords)
}

// NormalizeLabel lowercases s and turns every run of non-alphanumerics into one space.
func NormalizeLabel(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

// IsLabel reports whether s, once normalized, is a known label word.
func (n *Normalizer) IsLabel(s string) bool {
	key := NormalizeLabel(s)
	return key != "" && n.labels[key]
}

// StripLabel returns the value part of a "Label: value" line. The first of ':', '=' or '-'
// separates label from value; lines whose left part is not a label are returned unchanged.
func (n *Normalizer) StripLabel(line string) string {
	loc := labelSeparator.FindStringIndex(line)
	if loc == nil {
		return line
	}
	left := strings.TrimSpace(line[:loc[0]])
	right := strings.TrimSpace(line[loc[1]:])
	if right != "" && n.IsLabel(left) {
		return right
	}
	return line
}

// RemoveNoise deletes noise phrases from a single line and tidies what is left.
func (n *Normalizer) RemoveNoise(line string) string {
	if n.noise == nil || !n.noise.MatchString(line) {
		return line
	}
	line = n.noise.ReplaceAllString(line, " ")
	line = spaceRun.ReplaceAllString(line, " ")
	return strings.Trim(line, " -:=,;|/")
}

// Normalize cleans OCR text line by line. Line order is preserved and nothing is added.
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = CleanUnicode(text)

	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if line, ok := n.normalizeLine(raw); ok {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// normalizeLine applies noise removal, label dropping and prefix stripping until the
// line stops changing, so every returned line is already a fixed point.
func (n *Normalizer) normalizeLine(raw string) (string, bool) {
	line := collapse(raw)
	for {
		prev := line
		line = collapse(n.RemoveNoise(line))
		if line == "" || n.IsLabel(line) {
			return "", false
		}
		line = collapse(n.StripLabel(line))
		if line == prev {
			return line, true
		}
	}
}

// Clean removes noise phrases and normalizes whitespace without touching labels.
// It keeps at most one blank line between paragraphs.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	text = CleanUnicode(text)

	var out []string
	blank := 0
	for _, raw := range strings.Split(text, "\n") {
		line := collapse(n.RemoveNoise(collapse(raw)))
		if line == "" {
			blank++
			if blank == 1 && len(out) > 0 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// CleanUnicode applies NFKC normalization, unifies line endings and drops control
// characters other than newline and tab.
func CleanUnicode(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// transform.Chain keeps state, so every call gets its own chain.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold lowercases s and strips diacritics so "Café" and "cafe" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer(), s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
