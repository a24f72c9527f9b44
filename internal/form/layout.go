package form

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// VisibleHeight returns how much of r lies vertically inside viewport.
func (r Rect) VisibleHeight(viewport Rect) float64 {
	top := max(r.Y, viewport.Y)
	bottom := min(r.Bottom(), viewport.Bottom())
	return max(0, bottom-top)
}

// VisibleFraction returns the share of r's height inside viewport. Zero-height boxes
// count as fully visible unless they sit outside the viewport.
func (r Rect) VisibleFraction(viewport Rect) float64 {
	if r.Height <= 0 {
		if r.Y < viewport.Y || r.Y > viewport.Bottom() {
			return 0
		}
		return 1
	}
	return r.VisibleHeight(viewport) / r.Height
}

// Layout supplies geometry for forms and controls. Box returns false when the layout
// knows nothing about the element; such elements are treated as fully visible.
type Layout interface {
	Viewport() Rect
	Box(loc Locator) (Rect, bool)
}

// StaticLayout treats every element as on screen. Used for server-side documents.
type StaticLayout struct{}

// Viewport implements Layout.
func (StaticLayout) Viewport() Rect { return Rect{} }

// Box implements Layout.
func (StaticLayout) Box(Locator) (Rect, bool) { return Rect{}, false }

// RectLayout is a measured layout, as produced by a browser.
type RectLayout struct {
	View  Rect             `json:"viewport"`
	Boxes map[Locator]Rect `json:"-"`
}

// NewRectLayout creates an empty measured layout for a viewport.
func NewRectLayout(viewport Rect) *RectLayout {
	return &RectLayout{View: viewport, Boxes: map[Locator]Rect{}}
}

// Set records the box of an element.
func (l *RectLayout) Set(loc Locator, r Rect) {
	l.Boxes[loc] = r
}

// Viewport implements Layout.
func (l *RectLayout) Viewport() Rect { return l.View }

// Box implements Layout.
func (l *RectLayout) Box(loc Locator) (Rect, bool) {
	r, ok := l.Boxes[loc]
	return r, ok
}
