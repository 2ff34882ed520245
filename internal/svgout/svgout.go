// Package svgout writes an assembled chart document as standalone SVG.
package svgout

import (
	"bytes"
	"html"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/mgilbir/barsmith/internal/document"
)

// ContentType is the media type of Serialize output.
const ContentType = "image/svg+xml"

// Serialize returns the SVG markup of doc. The output depends only on doc,
// so equal documents serialize to identical bytes.
func Serialize(doc document.Document) []byte {
	var buf bytes.Buffer
	// bytes.Buffer never fails.
	_ = Write(&buf, doc)
	return buf.Bytes()
}

// Write streams the SVG markup of doc to w.
func Write(w io.Writer, doc document.Document) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(doc.Width, doc.Height,
		attr("viewBox", "0 0 "+num(doc.Width)+" "+num(doc.Height)))

	if len(doc.Defs) > 0 {
		canvas.Def()
		for _, p := range doc.Defs {
			canvas.Pattern(p.ID, 0, 0, p.Size, p.Size, "user")
			canvas.Path(p.Path,
				attr("fill", "none"),
				attr("stroke", p.Stroke),
				attr("stroke-width", num(p.StrokeWidth)))
			canvas.PatternEnd()
		}
		canvas.DefEnd()
	}

	for _, el := range doc.Elements {
		switch e := el.(type) {
		case document.Style:
			canvas.Style("text/css", e.CSS)
		case document.Rect:
			writeRect(canvas, e)
		case document.Line:
			canvas.Line(e.X1, e.Y1, e.X2, e.Y2, optional("class", e.Class)...)
		case document.Text:
			writeText(canvas, e)
		}
	}
	canvas.End()
	return ew.err
}

func writeRect(canvas *svg.SVG, r document.Rect) {
	var attrs []string
	attrs = append(attrs, optional("fill", r.Fill)...)
	attrs = append(attrs, optional("class", r.Class)...)
	attrs = append(attrs, optional("stroke", r.Stroke)...)
	if r.StrokeWidth != 0 {
		attrs = append(attrs, attr("stroke-width", num(r.StrokeWidth)))
	}
	if r.Radius != 0 {
		canvas.Roundrect(r.X, r.Y, r.Width, r.Height, r.Radius, r.Radius, attrs...)
		return
	}
	canvas.Rect(r.X, r.Y, r.Width, r.Height, attrs...)
}

func writeText(canvas *svg.SVG, t document.Text) {
	var attrs []string
	attrs = append(attrs, optional("text-anchor", string(t.Anchor))...)
	attrs = append(attrs, optional("class", t.Class)...)
	attrs = append(attrs, optional("fill", t.Fill)...)
	attrs = append(attrs, optional("font-weight", t.FontWeight)...)
	attrs = append(attrs, optional("transform", t.Transform)...)
	attrs = append(attrs, optional("style", t.Style)...)
	canvas.Text(t.X, t.Y, t.Content, attrs...)
}

// attr formats name="value" with value escaped. svgo writes any argument
// containing "=" verbatim as an attribute.
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func optional(name, value string) []string {
	if value == "" {
		return nil
	}
	return []string{attr(name, value)}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	if _, err := e.w.Write(p); err != nil {
		e.err = err
	}
	return len(p), nil
}
