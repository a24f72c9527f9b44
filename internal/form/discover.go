package form

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinControlVisibility is the share of a control's height that must be on screen.
const MinControlVisibility = 0.3

var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"file":   true,
	"reset":  true,
	"image":  true,
}

var (
	hiddenStyle = regexp.MustCompile(`(?i)(display\s*:\s*none|visibility\s*:\s*hidden)`)
	nameSplit   = regexp.MustCompile(`[-_]+`)
)

// Discover returns the fillable fields of f in document order. Radio buttons sharing a
// name become one field whose Group lists every member.
func Discover(f Form, layout Layout) []Field {
	if layout == nil {
		layout = StaticLayout{}
	}

	var fields []Field
	radioGroups := map[string]int{}

	f.Controls().Each(func(i int, s *goquery.Selection) {
		kind, inputType := kindOf(s)
		if skippedInputTypes[inputType] {
			return
		}
		loc := Locator{Form: f.Index, Control: i}
		if !Usable(s) || !onScreen(layout, loc) {
			return
		}

		ctrl := Control{
			Node:      s.Get(0),
			Locator:   loc,
			Kind:      kind,
			InputType: inputType,
			Name:      attr(s, "name"),
			ID:        attr(s, "id"),
			Value:     attr(s, "value"),
			Label:     ownLabel(s),
		}

		if kind == KindRadio {
			if ctrl.Name != "" {
				if idx, ok := radioGroups[ctrl.Name]; ok {
					fields[idx].Group = append(fields[idx].Group, ctrl)
					return
				}
				radioGroups[ctrl.Name] = len(fields)
			}
			field := buildField(s, ctrl)
			field.Label, field.MatchText = groupLabel(s, ctrl)
			field.Group = []Control{ctrl}
			fields = append(fields, field)
			return
		}

		fields = append(fields, buildField(s, ctrl))
	})
	return fields
}

// Usable reports whether a control can be written: not disabled, not read-only, not
// inside a disabled fieldset and not hidden by attribute or inline style.
func Usable(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return false
	}
	if _, ok := s.Attr("readonly"); ok {
		return false
	}
	if s.Closest("fieldset[disabled]").Length() > 0 {
		return false
	}
	return !CSSHidden(s)
}

// CSSHidden reports whether s or an ancestor is hidden via the hidden attribute or an
// inline display:none / visibility:hidden style.
func CSSHidden(s *goquery.Selection) bool {
	hidden := false
	s.AddSelection(s.Parents()).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if _, ok := el.Attr("hidden"); ok {
			hidden = true
			return false
		}
		if style, ok := el.Attr("style"); ok && hiddenStyle.MatchString(style) {
			hidden = true
			return false
		}
		return true
	})
	return hidden
}

func onScreen(layout Layout, loc Locator) bool {
	box, ok := layout.Box(loc)
	if !ok {
		return true
	}
	return box.VisibleFraction(layout.Viewport()) >= MinControlVisibility
}

func buildField(s *goquery.Selection, ctrl Control) Field {
	label := FindLabel(s)
	placeholder := attr(s, "placeholder")

	field := Field{
		Control:     ctrl,
		Label:       displayLabel(label, placeholder, ctrl),
		MatchText:   matchText(s, label, placeholder, ctrl),
		TypeHint:    strings.ToLower(attr(s, AttrType)),
		Placeholder: placeholder,
	}
	if ctrl.Kind == KindSelect {
		s.Find("option").Each(func(_ int, o *goquery.Selection) {
			text := collapse(o.Text())
			value, ok := o.Attr("value")
			if !ok {
				value = text
			}
			field.Options = append(field.Options, Option{Value: value, Label: text})
		})
	}
	return field
}

func displayLabel(label, placeholder string, ctrl Control) string {
	for _, v := range []string{label, placeholder, ctrl.Name, ctrl.ID} {
		if v != "" {
			return v
		}
	}
	return "Field"
}

// matchText joins every piece of naming the control carries, lowercased.
func matchText(s *goquery.Selection, label, placeholder string, ctrl Control) string {
	parts := []string{
		label,
		placeholder,
		attr(s, "data-label"),
		attr(s, "aria-label"),
		splitName(ctrl.Name),
		splitName(ctrl.ID),
	}
	var kept []string
	seen := map[string]bool{}
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return strings.Join(kept, " / ")
}

func splitName(name string) string {
	return strings.TrimSpace(nameSplit.ReplaceAllString(name, " "))
}
