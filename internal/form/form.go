// Package form discovers fillable fields in HTML forms. Documents are parsed with
// goquery; geometry comes from a Layout supplied by the host (a live browser, or a
// static layout when every element is assumed on screen).
package form

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Host page attributes.
const (
	AttrType     = "data-appycrew-type"
	AttrFormType = "data-appycrew-form-type"
	AttrAPIBase  = "data-appycrew-api-base"
)

// ControlSelector matches every element that can become a field, in document order.
const ControlSelector = "input, textarea, select"

// ErrNoForm is returned when a document has no usable form.
var ErrNoForm = errors.New("no form found")

// Kind is the control family a field belongs to.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
)

// Locator addresses a control by position: the index of its form among the document's
// forms and its index among the form's controls. Control is -1 for the form itself.
type Locator struct {
	Form    int `json:"form"`
	Control int `json:"control"`
}

// FormLocator addresses a whole form.
func FormLocator(form int) Locator {
	return Locator{Form: form, Control: -1}
}

// Control is one form element.
type Control struct {
	Node      *html.Node `json:"-"`
	Locator   Locator    `json:"locator"`
	Kind      Kind       `json:"kind"`
	InputType string     `json:"inputType"`
	Name      string     `json:"name,omitempty"`
	ID        string     `json:"id,omitempty"`
	// Value is the value attribute; for radios and checkboxes it identifies the choice.
	Value string `json:"value,omitempty"`
	// Label is the control's own label (a radio option's text, for instance).
	Label string `json:"label,omitempty"`
}

// Selection wraps the control's node for goquery access.
func (c Control) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(c.Node).Selection
}

// Option is a select option.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a fillable unit: a single control, or a whole radio group.
type Field struct {
	Control     Control   `json:"control"`
	Label       string    `json:"label"`
	MatchText   string    `json:"matchText"`
	TypeHint    string    `json:"typeHint,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	Group       []Control `json:"group,omitempty"`
}

// Kind returns the field's control kind.
func (f Field) Kind() Kind { return f.Control.Kind }

// InputType returns the control's input type ("number", "email", "textarea", ...).
func (f Field) InputType() string { return f.Control.InputType }

// Form is one <form> element in a document.
type Form struct {
	Index    int                `json:"index"`
	ID       string             `json:"id,omitempty"`
	Name     string             `json:"name,omitempty"`
	FormType string             `json:"formType,omitempty"`
	APIBase  string             `json:"apiBase,omitempty"`
	Sel      *goquery.Selection `json:"-"`
}

// Forms lists the document's forms in declaration order.
func Forms(doc *goquery.Document) []Form {
	var out []Form
	doc.Find("form").Each(func(i int, s *goquery.Selection) {
		out = append(out, Form{
			Index:    i,
			ID:       attr(s, "id"),
			Name:     attr(s, "name"),
			FormType: attr(s, AttrFormType),
			APIBase:  attr(s, AttrAPIBase),
			Sel:      s,
		})
	})
	return out
}

// Controls returns the form's control elements in document order.
func (f Form) Controls() *goquery.Selection {
	return f.Sel.Find(ControlSelector)
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func kindOf(s *goquery.Selection) (Kind, string) {
	switch goquery.NodeName(s) {
	case "textarea":
		return KindTextarea, "textarea"
	case "select":
		return KindSelect, "select"
	}
	t := strings.ToLower(attr(s, "type"))
	if t == "" {
		t = "text"
	}
	switch t {
	case "radio":
		return KindRadio, t
	case "checkbox":
		return KindCheckbox, t
	}
	return KindText, t
}
