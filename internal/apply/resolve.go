package apply

import (
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/keywords"
)

// MaxOptionDistance bounds fuzzy select-option matching.
const MaxOptionDistance = 3

var truthy = map[string]bool{"true": true, "yes": true, "1": true, "on": true, "checked": true}

// Truthy reports whether a value should tick a checkbox.
func Truthy(value string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(value))]
}

// ResolveOption picks the select option for value: an exact value or label match, then
// containment either way, then the closest option within MaxOptionDistance edits.
func ResolveOption(options []form.Option, value string) (form.Option, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return form.Option{}, false
	}

	for _, o := range options {
		if strings.ToLower(o.Value) == v || strings.ToLower(o.Label) == v {
			return o, true
		}
	}

	for _, o := range options {
		ov, ol := strings.ToLower(o.Value), strings.ToLower(o.Label)
		if ov != "" && (strings.Contains(ov, v) || strings.Contains(v, ov)) {
			return o, true
		}
		if ol != "" && (strings.Contains(ol, v) || strings.Contains(v, ol)) {
			return o, true
		}
	}

	best, bestDist := form.Option{}, MaxOptionDistance+1
	for _, o := range options {
		if o.Value == "" {
			continue
		}
		d := min(keywords.Levenshtein(strings.ToLower(o.Value), v), keywords.Levenshtein(strings.ToLower(o.Label), v))
		if d < bestDist {
			best, bestDist = o, d
		}
	}
	return best, bestDist <= MaxOptionDistance
}

// ResolveRadio picks the group member for value: matching value, a label containing the
// value, or a value contained in it.
func ResolveRadio(group []form.Control, value string) (form.Control, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return form.Control{}, false
	}
	for _, c := range group {
		cv := strings.ToLower(c.Value)
		cl := strings.ToLower(c.Label)
		if cv == v || (cl != "" && strings.Contains(cl, v)) || (cv != "" && strings.Contains(v, cv)) {
			return c, true
		}
	}
	return form.Control{}, false
}
