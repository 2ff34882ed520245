// Package document holds the drawable primitives of a rendered chart and
// assembles them, in draw order, into an immutable Document.
package document

// Primitive is one drawable element. The concrete types are Rect, Line,
// Text and Style.
type Primitive interface {
	isPrimitive()
}

// Rect is a filled rectangle. Zero-valued optional fields are omitted on
// output.
type Rect struct {
	X, Y, Width, Height float64
	Fill                string
	Class               string
	Stroke              string
	StrokeWidth         float64
	// Radius rounds the corners when non-zero.
	Radius float64
}

// Line is a straight stroke styled by its class.
type Line struct {
	X1, Y1, X2, Y2 float64
	Class          string
}

// Anchor is the SVG text-anchor value.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a single line of text.
type Text struct {
	X, Y       float64
	Content    string
	Anchor     Anchor
	Class      string
	Fill       string
	FontWeight string
	Transform  string
	// Style is an inline CSS override.
	Style string
}

// Style is the inline style sheet element.
type Style struct {
	CSS string
}

func (Rect) isPrimitive()  {}
func (Line) isPrimitive()  {}
func (Text) isPrimitive()  {}
func (Style) isPrimitive() {}

// Pattern is a repeating tile definition referenced by a fill.
type Pattern struct {
	ID          string
	Size        float64
	Path        string
	Stroke      string
	StrokeWidth float64
}

// URL returns the fill reference to the pattern.
func (p Pattern) URL() string { return "url(#" + p.ID + ")" }

// BarSet is the output of the bar geometry builder.
type BarSet struct {
	Patterns []Pattern
	// Elements are the rectangles and labels of every bar, in data order.
	Elements []Primitive
	// GroupLabels are drawn after all bars.
	GroupLabels []Text
}

// Document is a complete chart ready for serialization. Its slices must not
// be modified once built.
type Document struct {
	Width, Height float64
	Defs          []Pattern
	Elements      []Primitive
}

// Texts returns the text elements of d in draw order.
func (d Document) Texts() []Text {
	var out []Text
	for _, p := range d.Elements {
		if t, ok := p.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Rects returns the rectangles of d in draw order.
func (d Document) Rects() []Rect {
	var out []Rect
	for _, p := range d.Elements {
		if r, ok := p.(Rect); ok {
			out = append(out, r)
		}
	}
	return out
}
