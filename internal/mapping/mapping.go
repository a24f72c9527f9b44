// Package mapping pairs extracted record values with discovered form fields: explicit
// type hints first, then a semantic score over labels, synonyms and fuzzy tokens.
package mapping

import (
	"sort"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/keywords"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// Method records which pass produced a mapping.
type Method string

const (
	MethodTypeHint Method = "type-hint"
	MethodSemantic Method = "semantic"
)

// Scoring constants.
const (
	HintScore        = 10
	SynonymScore     = 5
	LearnedScore     = 5
	NumberInputScore = 3
	MaxFuzzyScore    = 3
	FuzzyDistance    = 2
	MinFuzzyToken    = 4
	// Synonyms this short only count as whole words ("site" does not score "Website").
	MaxWordSynonym   = 5

	Threshold             = 5
	ScoreScale            = 15.0
	MaxSemanticConfidence = 0.9
	DefaultHintConfidence = 0.95
)

// Mapping assigns one record value to one field. Only Checked changes after creation.
type Mapping struct {
	Field      form.Field `json:"field"`
	Key        types.Key  `json:"key"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	Checked    bool       `json:"checked"`
	Method     Method     `json:"method"`
	Score      int        `json:"score,omitempty"`
}

// HintSource supplies keys learned for a field label, typically from past corrections.
type HintSource interface {
	KeysFor(label string) []types.Key
}

// Engine builds mappings. It is stateless between calls.
type Engine struct {
	synonyms map[types.Key][]string
	hints    HintSource
}

// Option configures an Engine.
type Option func(*Engine)

// WithHints adds learned label hints to semantic scoring.
func WithHints(h HintSource) Option {
	return func(e *Engine) { e.hints = h }
}

// WithSynonyms replaces the label synonyms of a key.
func WithSynonyms(key types.Key, synonyms []string) Option {
	return func(e *Engine) { e.synonyms[key] = synonyms }
}

// NewEngine creates an Engine with the default synonym tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{synonyms: DefaultSynonyms()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HintKey resolves a data-appycrew-type value to a record key. Hints such as "name" or
// "job-id" name fields the scanner never fills and resolve to false.
func HintKey(hint string) (types.Key, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "item":
		return types.KeyItem, true
	case "location":
		return types.KeyLocation, true
	case "qty", "quantity":
		return types.KeyQuantity, true
	case "description":
		return types.KeyDescription, true
	case "notes":
		return types.KeyNotes, true
	case "type":
		return types.KeyItemType, true
	}
	return "", false
}

// Map runs both passes over fields and returns deduplicated mappings sorted by
// descending confidence. Every mapping starts checked.
func (e *Engine) Map(rec *types.ExtractedRecord, fields []form.Field) []Mapping {
	if rec == nil || len(fields) == 0 {
		return nil
	}

	var out []Mapping
	usedFields := map[form.Locator]bool{}
	usedKeys := map[types.Key]bool{}

	// Pass 1: explicit type hints. A hinted field with nothing to take goes on to pass 2.
	for _, f := range fields {
		if f.TypeHint == "" {
			continue
		}
		key, ok := HintKey(f.TypeHint)
		if !ok {
			continue
		}
		value, ok := rec.Get(key)
		if !ok {
			continue
		}
		out = append(out, Mapping{
			Field:      f,
			Key:        key,
			Value:      value,
			Confidence: rec.ConfidenceFor(key, DefaultHintConfidence),
			Checked:    true,
			Method:     MethodTypeHint,
		})
		usedFields[f.Control.Locator] = true
		usedKeys[key] = true
	}

	// Pass 2: semantic score against every still-unused key.
	for _, f := range fields {
		if usedFields[f.Control.Locator] {
			continue
		}
		bestKey, bestScore := types.Key(""), 0
		for _, key := range semanticOrder {
			if usedKeys[key] || !rec.Has(key) {
				continue
			}
			if score := e.Score(f, key); score > bestScore {
				bestKey, bestScore = key, score
			}
		}
		if bestScore <= Threshold {
			continue
		}
		value, _ := rec.Get(bestKey)
		out = append(out, Mapping{
			Field:      f,
			Key:        bestKey,
			Value:      value,
			Confidence: min(float64(bestScore)/ScoreScale, MaxSemanticConfidence),
			Checked:    true,
			Method:     MethodSemantic,
			Score:      bestScore,
		})
		usedFields[f.Control.Locator] = true
		usedKeys[bestKey] = true
	}

	out = Dedupe(out)
	SortByConfidence(out)
	return out
}

// Score rates how well field f fits key.
func (e *Engine) Score(f form.Field, key types.Key) int {
	score := 0
	if hk, ok := HintKey(f.TypeHint); ok && hk == key {
		score += HintScore
	}

	label := strings.ToLower(f.MatchText)
	synonyms := e.synonyms[key]
	for _, syn := range synonyms {
		if containsSynonym(label, syn) {
			score += SynonymScore
		}
	}
	for _, tok := range tokens(label) {
		if len([]rune(tok)) < MinFuzzyToken {
			continue
		}
		for _, syn := range synonyms {
			if d := keywords.Levenshtein(tok, syn); d <= FuzzyDistance {
				score += max(0, MaxFuzzyScore-d)
			}
		}
	}

	if key == types.KeyQuantity && f.InputType() == "number" {
		score += NumberInputScore
	}
	if e.hints != nil {
		for _, k := range e.hints.KeysFor(f.Label) {
			if k == key {
				score += LearnedScore
				break
			}
		}
	}
	return score
}

// Dedupe keeps the highest-confidence mapping per (field, key). Input order is kept for
// the survivors.
func Dedupe(ms []Mapping) []Mapping {
	type dedupeKey struct {
		loc form.Locator
		key types.Key
	}
	best := map[dedupeKey]int{}
	var out []Mapping
	for _, m := range ms {
		k := dedupeKey{m.Field.Control.Locator, m.Key}
		if i, ok := best[k]; ok {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		best[k] = len(out)
		out = append(out, m)
	}
	return out
}

// SortByConfidence orders mappings by descending confidence, keeping field order on ties.
func SortByConfidence(ms []Mapping) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Confidence > ms[j].Confidence
	})
}

// containsSynonym reports whether syn occurs in label. Short synonyms must stand as a
// whole word, optionally pluralized.
func containsSynonym(label, syn string) bool {
	if len([]rune(syn)) > MaxWordSynonym {
		return strings.Contains(label, syn)
	}
	for i := 0; i < len(label); {
		j := strings.Index(label[i:], syn)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(syn)
		if (start == 0 || !isWordByte(label[start-1])) && wordEnds(label[end:]) {
			return true
		}
		i = start + 1
	}
	return false
}

func wordEnds(rest string) bool {
	for _, suffix := range []string{"", "s", "es"} {
		if !strings.HasPrefix(rest, suffix) {
			continue
		}
		if len(rest) == len(suffix) || !isWordByte(rest[len(suffix)]) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b > 127
}

func tokens(label string) []string {
	return strings.FieldsFunc(label, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
}
