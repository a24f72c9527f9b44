// Package keywords recognizes inventory items and room locations in free text using
// curated keyword tables, synonym maps and bounded Levenshtein fuzzy matching.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/appycrew-ocr/internal/textnorm"
)

// DefaultThreshold is the largest edit distance accepted by fuzzy matching.
const DefaultThreshold = 2

// Match is one keyword hit.
type Match struct {
	// Canonical is the display form: the synonym target, or the keyword itself.
	Canonical string
	// Phrase is the keyword or synonym phrase that was found in the text.
	Phrase string
}

type phrase struct {
	text      string
	canonical string
	synonym   bool
	re        *regexp.Regexp
}

// Matcher finds keywords in text. It is immutable and safe for concurrent use.
type Matcher struct {
	locSynonyms []phrase
	locKeywords []phrase
	items       []phrase
	locations   Table
	itemTable   Table
	threshold   int
}

// NewMatcher compiles the location and item tables.
func NewMatcher(locations, items Table) *Matcher {
	m := &Matcher{locations: locations, itemTable: items, threshold: DefaultThreshold}
	for _, s := range locations.Synonyms {
		if blank(s.Phrase) {
			continue
		}
		m.locSynonyms = append(m.locSynonyms, compile(s.Phrase, s.Canonical, true))
	}
	for _, k := range locations.Keywords {
		if blank(k) {
			continue
		}
		m.locKeywords = append(m.locKeywords, compile(k, Capitalize(k), false))
	}

	itemSyn := make(map[string]string, len(items.Synonyms))
	for _, s := range items.Synonyms {
		itemSyn[strings.ToLower(s.Phrase)] = s.Canonical
	}
	for _, k := range items.Keywords {
		if blank(k) {
			continue
		}
		canonical, ok := itemSyn[strings.ToLower(k)]
		if !ok {
			canonical = k
		}
		m.items = append(m.items, compile(k, canonical, ok))
	}
	for _, s := range items.Synonyms {
		if !blank(s.Phrase) && !containsFold(items.Keywords, s.Phrase) {
			m.items = append(m.items, compile(s.Phrase, s.Canonical, true))
		}
	}
	return m
}

// Default returns a Matcher over the built-in tables.
func Default() *Matcher {
	return NewMatcher(DefaultLocations(), DefaultItems())
}

// Locations returns the location table the matcher was built from.
func (m *Matcher) Locations() Table { return m.locations }

// Items returns the item table the matcher was built from.
func (m *Matcher) Items() Table { return m.itemTable }

// FindLocation returns the first location found in text. Synonyms are tried before
// keywords, each in table order.
func (m *Matcher) FindLocation(text string) (Match, bool) {
	if strings.TrimSpace(text) == "" {
		return Match{}, false
	}
	folded := textnorm.Fold(text)
	for _, group := range [][]phrase{m.locSynonyms, m.locKeywords} {
		for _, p := range group {
			if p.re.MatchString(folded) {
				return Match{Canonical: p.canonical, Phrase: p.text}, true
			}
		}
	}
	return Match{}, false
}

type span struct {
	start, end int
	p          phrase
}

// FindItems returns every item found in text, ordered by first position. When phrases
// overlap the one starting first wins, then the longer one, then a synonym. Results are
// unique by canonical form.
func (m *Matcher) FindItems(text string) []Match {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	folded := textnorm.Fold(text)

	var spans []span
	for _, p := range m.items {
		for _, loc := range p.re.FindAllStringIndex(folded, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1], p: p})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end > b.end
		}
		return a.p.synonym && !b.p.synonym
	})

	var out []Match
	seen := map[string]bool{}
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		lastEnd = s.end
		key := strings.ToLower(s.p.canonical)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Match{Canonical: s.p.canonical, Phrase: s.p.text})
	}
	return out
}

// ItemNames returns the canonical names of FindItems.
func (m *Matcher) ItemNames(text string) []string {
	matches := m.FindItems(text)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = match.Canonical
	}
	return names
}

// FuzzyLocation reports whether text looks like a location, tolerating typos.
func (m *Matcher) FuzzyLocation(text string) (string, bool) {
	if match, ok := m.FindLocation(text); ok {
		return match.Phrase, true
	}
	return FuzzyMatch(text, m.locations.Keywords, m.threshold)
}

// FuzzyItem reports whether text looks like an item, tolerating typos.
func (m *Matcher) FuzzyItem(text string) (string, bool) {
	if matches := m.FindItems(text); len(matches) > 0 {
		return matches[0].Phrase, true
	}
	return FuzzyMatch(text, m.itemTable.Keywords, m.threshold)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// WordPattern compiles a case-insensitive, whole-word pattern for a phrase. Whitespace
// inside the phrase matches any run of whitespace.
func WordPattern(text string) *regexp.Regexp {
	fields := strings.Fields(textnorm.Fold(text))
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
}

func compile(text, canonical string, synonym bool) phrase {
	return phrase{text: text, canonical: canonical, synonym: synonym, re: WordPattern(text)}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
