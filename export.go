package barsmith

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/svgout"
)

// Format is an export format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var (
	// ErrUnsupportedFormat is returned for recognised formats that cannot be
	// produced yet. It is not a rendering failure.
	ErrUnsupportedFormat = errors.New("barsmith: PNG export is not implemented yet, use SVG")
	// ErrUnknownFormat is returned for format names that are not recognised.
	ErrUnknownFormat = errors.New("barsmith: unknown export format")
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Artifact is an exported chart.
type Artifact struct {
	Data        []byte
	ContentType string
	// Filename is the suggested download name.
	Filename string
}

// Export serializes c in the given format.
func (c *Chart) Export(f Format) (Artifact, error) {
	switch f {
	case FormatSVG:
		return Artifact{
			Data:        c.SVG(),
			ContentType: svgout.ContentType,
			Filename:    Filename(c.title, f),
		}, nil
	case FormatPNG:
		return Artifact{}, ErrUnsupportedFormat
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// Export renders cfg and serializes it in the given format.
func (r *Renderer) Export(cfg chart.Config, f Format) (Artifact, error) {
	if f != FormatSVG {
		// Fail before rendering.
		return (&Chart{}).Export(f)
	}
	return r.Render(cfg).Export(f)
}

// Filename suggests a file name for a chart titled title: the title with
// path separators and reserved characters replaced, or "chart".
func Filename(title string, f Format) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" || strings.Trim(name, ".") == "" {
		name = "chart"
	}
	return name + "." + string(f)
}
