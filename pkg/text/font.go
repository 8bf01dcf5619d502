package text

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// Font is the text measurement contract required by the layout engine.
// All quantities are integer pixels.
type Font interface {
	// TextWidth returns the advance width of s.
	TextWidth(s string) int

	Ascent() int
	Descent() int
	EmPixels() int
	ExPixels() int
	SpacePixels() int
}

// FaceFont is a Font backed by a TTF face. It remembers its source path
// and size so renderers can load the same face for drawing.
type FaceFont struct {
	face    font.Face
	path    string
	size    float64
	ascent  int
	descent int
	em      int
	ex      int
	space   int
}

// LoadFont parses the TTF file at path and derives pixel metrics for the
// given size.
func LoadFont(path string, size float64) (*FaceFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face := truetype.NewFace(tt, &truetype.Options{Size: size})

	m := face.Metrics()
	f := &FaceFont{
		face:    face,
		path:    path,
		size:    size,
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
		em:      int(size + 0.5),
	}

	// The ex height is the height of a lowercase 'x'; fall back to half
	// an em for faces without one.
	if bounds, _, ok := face.GlyphBounds('x'); ok {
		f.ex = (bounds.Max.Y - bounds.Min.Y).Ceil()
	}
	if f.ex == 0 {
		f.ex = f.em / 2
	}

	if adv, ok := face.GlyphAdvance(' '); ok {
		f.space = adv.Ceil()
	} else {
		f.space = f.em / 3
	}
	return f, nil
}

func (f *FaceFont) TextWidth(s string) int {
	return font.MeasureString(f.face, s).Ceil()
}

func (f *FaceFont) Ascent() int      { return f.ascent }
func (f *FaceFont) Descent() int     { return f.descent }
func (f *FaceFont) EmPixels() int    { return f.em }
func (f *FaceFont) ExPixels() int    { return f.ex }
func (f *FaceFont) SpacePixels() int { return f.space }

// Path returns the font file the face was loaded from.
func (f *FaceFont) Path() string { return f.path }

// Size returns the point size the face was loaded at.
func (f *FaceFont) Size() float64 { return f.size }

// Kern returns the kerning adjustment between two runes in pixels.
func (f *FaceFont) Kern(a, b rune) int {
	return f.face.Kern(a, b).Round()
}

// FixedFont is a Font with constant per-character metrics. Layout tests
// use it to get deterministic pixel arithmetic without loading font
// files.
type FixedFont struct {
	CharWidth   int
	AscentPx    int
	DescentPx   int
	EmPx        int
	ExPx        int
	SpacePx     int
}

// NewFixedFont returns a monospace test font: every character advances
// charWidth pixels.
func NewFixedFont(charWidth, ascent, descent int) *FixedFont {
	return &FixedFont{
		CharWidth: charWidth,
		AscentPx:  ascent,
		DescentPx: descent,
		EmPx:      ascent + descent,
		ExPx:      (ascent + descent) / 2,
		SpacePx:   charWidth,
	}
}

func (f *FixedFont) TextWidth(s string) int {
	n := 0
	for range s {
		n++
	}
	return n * f.CharWidth
}

func (f *FixedFont) Ascent() int      { return f.AscentPx }
func (f *FixedFont) Descent() int     { return f.DescentPx }
func (f *FixedFont) EmPixels() int    { return f.EmPx }
func (f *FixedFont) ExPixels() int    { return f.ExPx }
func (f *FixedFont) SpacePixels() int { return f.SpacePx }
