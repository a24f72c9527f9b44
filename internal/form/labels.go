package form

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaces = regexp.MustCompile(`\s+`)

const groupContainers = ".form-group, .field-group, .input-group"

// FindLabel resolves the visible label of a control. In order: label[for=id], a wrapping
// label, a preceding label-like sibling, the enclosing fieldset's legend, then the label
// of an enclosing form-group container.
func FindLabel(s *goquery.Selection) string {
	if id := attr(s, "id"); id != "" {
		root := s.Parents().Last()
		var found string
		root.Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if attr(l, "for") == id {
				found = labelText(l)
				return found == ""
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if wrap := s.Closest("label"); wrap.Length() > 0 {
		if text := labelText(wrap); text != "" {
			return text
		}
	}

	if prev := s.Prev(); prev.Length() > 0 && labelLike(prev) {
		if text := labelText(prev); text != "" {
			return text
		}
	}

	if legend := legendOf(s); legend != "" {
		return legend
	}

	if group := s.Closest(groupContainers); group.Length() > 0 {
		if text := labelText(group.Find("label, .label, .field-label").First()); text != "" {
			return text
		}
	}
	return ""
}

// ownLabel is the text naming a single choice: for radios and checkboxes that is the
// label attached to the control itself.
func ownLabel(s *goquery.Selection) string {
	kind, _ := kindOf(s)
	if kind != KindRadio && kind != KindCheckbox {
		return ""
	}
	if id := attr(s, "id"); id != "" {
		var found string
		s.Parents().Last().Find("label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if attr(l, "for") == id {
				found = labelText(l)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	if wrap := s.Closest("label"); wrap.Length() > 0 {
		if text := labelText(wrap); text != "" {
			return text
		}
	}
	if next := s.Next(); next.Length() > 0 && goquery.NodeName(next) == "label" {
		return labelText(next)
	}
	return ""
}

// groupLabel names a radio group: the fieldset legend first, then a form-group label,
// then the shared name.
func groupLabel(s *goquery.Selection, ctrl Control) (string, string) {
	label := legendOf(s)
	if label == "" {
		if group := s.Closest(groupContainers); group.Length() > 0 {
			label = labelText(group.Find("label, .label, .field-label").First())
		}
	}
	display := label
	if display == "" {
		display = displayLabel("", "", ctrl)
	}
	return display, matchText(s, label, "", ctrl)
}

func legendOf(s *goquery.Selection) string {
	fs := s.Closest("fieldset")
	if fs.Length() == 0 {
		return ""
	}
	return collapse(fs.ChildrenFiltered("legend").First().Text())
}

func labelLike(s *goquery.Selection) bool {
	if goquery.NodeName(s) == "label" {
		return true
	}
	class := " " + attr(s, "class") + " "
	return strings.Contains(class, " label ") || strings.Contains(class, "field-label") || strings.Contains(class, "form-label")
}

// labelText returns the text of a label element, ignoring any controls nested in it.
func labelText(l *goquery.Selection) string {
	if l.Length() == 0 {
		return ""
	}
	clone := l.Clone()
	clone.Find("input, select, textarea, option").Remove()
	return collapse(clone.Text())
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
