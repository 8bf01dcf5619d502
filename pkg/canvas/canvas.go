package canvas

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
	"github.com/Geballin/tkhtml3/pkg/text"
)

// StyleResolver maps a tree node to its computed style. Box and line
// primitives store the node that generated them and resolve the style at
// paint time.
type StyleResolver func(*html.Node) *css.ComputedValues

type Kind int

const (
	KindText Kind = iota
	KindBox
	KindLine
)

// BoxFlags mark border boxes whose left or right edge continues on
// another line and must not be stroked.
type BoxFlags int

const (
	BoxOpenLeft BoxFlags = 1 << iota
	BoxOpenRight
)

// Primitive is one retained drawing command. Which fields are meaningful
// depends on Kind.
type Primitive struct {
	Kind Kind
	Node *html.Node

	X, Y int

	// KindText: the string, its advance width, font, fill color and the
	// character index of the first byte within the source node.
	Text  string
	W     int
	Font  text.Font
	Color color.Color
	Index int

	// KindBox: width is W, height is H.
	H     int
	Flags BoxFlags

	// KindLine: candidate y-coordinates for the overline, line-through
	// and underline decorations; the node's computed text-decoration
	// picks which are drawn. The segment runs from X for W pixels.
	YOver    int
	YThrough int
	YUnder   int
}

// Canvas is a paint-ordered list of drawing primitives plus the bounding
// extents of everything drawn so far. The origin is the caller's; extents
// may be negative.
type Canvas struct {
	prims []Primitive

	Left   int
	Right  int
	Top    int
	Bottom int
}

func New() *Canvas { return &Canvas{} }

// IsEmpty reports whether nothing has been drawn.
func (c *Canvas) IsEmpty() bool { return len(c.prims) == 0 }

// Width and Height report the extent bounds.
func (c *Canvas) Width() int  { return c.Right - c.Left }
func (c *Canvas) Height() int { return c.Bottom - c.Top }

// Primitives returns the retained drawing list in paint order.
func (c *Canvas) Primitives() []Primitive { return c.prims }

func (c *Canvas) grow(l, t, r, b int) {
	if len(c.prims) == 0 {
		c.Left, c.Top, c.Right, c.Bottom = l, t, r, b
		return
	}
	if l < c.Left {
		c.Left = l
	}
	if t < c.Top {
		c.Top = t
	}
	if r > c.Right {
		c.Right = r
	}
	if b > c.Bottom {
		c.Bottom = b
	}
}

// DrawText records a text primitive with its baseline at (x, y).
func (c *Canvas) DrawText(x, y int, s string, f text.Font, col color.Color, node *html.Node, index int) {
	w := f.TextWidth(s)
	c.grow(x, y-f.Ascent(), x+w, y+f.Descent())
	c.prims = append(c.prims, Primitive{
		Kind: KindText, Node: node,
		X: x, Y: y, Text: s, W: w, Font: f, Color: col, Index: index,
	})
}

// DrawBox records a border/background box primitive.
func (c *Canvas) DrawBox(x, y, w, h int, node *html.Node, flags BoxFlags) {
	c.grow(x, y, x+w, y+h)
	c.prims = append(c.prims, Primitive{
		Kind: KindBox, Node: node,
		X: x, Y: y, W: w, H: h, Flags: flags,
	})
}

// DrawLine records a decoration segment running from x for w pixels. The
// three y-coordinates locate the overline, line-through and underline;
// the node's computed text-decoration selects among them at paint time.
func (c *Canvas) DrawLine(x, w, yOver, yThrough, yUnder int, node *html.Node) {
	c.grow(x, yOver, x+w, yUnder+1)
	c.prims = append(c.prims, Primitive{
		Kind: KindLine, Node: node,
		X: x, W: w, YOver: yOver, YThrough: yThrough, YUnder: yUnder,
	})
}

// DrawCanvas appends all of src's primitives translated by (dx, dy).
// src is unchanged.
func (c *Canvas) DrawCanvas(src *Canvas, dx, dy int) {
	if src == nil || len(src.prims) == 0 {
		return
	}
	c.grow(src.Left+dx, src.Top+dy, src.Right+dx, src.Bottom+dy)
	for _, p := range src.prims {
		p.X += dx
		p.Y += dy
		if p.Kind == KindLine {
			p.YOver += dy
			p.YThrough += dy
			p.YUnder += dy
		}
		c.prims = append(c.prims, p)
	}
}

// lastText returns the index of the trailing text primitive, or -1 if the
// canvas does not end with text.
func (c *Canvas) lastText() int {
	if n := len(c.prims); n > 0 && c.prims[n-1].Kind == KindText {
		return n - 1
	}
	return -1
}

// MergeText folds a following text box into the trailing text primitive,
// separated by one space. Both canvases must end (resp. start) with text
// from the same source node; the caller checks that. Returns false if
// there is nothing to merge into.
func (c *Canvas) MergeText(src *Canvas, spacePixels int) bool {
	i := c.lastText()
	if i < 0 || src == nil {
		return false
	}
	var from *Primitive
	for j := range src.prims {
		if src.prims[j].Kind == KindText {
			from = &src.prims[j]
			break
		}
	}
	if from == nil {
		return false
	}
	p := &c.prims[i]
	p.Text += " " + from.Text
	p.W += spacePixels + from.W
	c.grow(p.X, p.Y-p.Font.Ascent(), p.X+p.W, p.Y+p.Font.Descent())
	return true
}

// ExtendText widens the trailing text primitive by the given number of
// pixels so selection regions stay contiguous across box gaps. Returns
// false if the canvas does not end with text.
func (c *Canvas) ExtendText(pixels int) bool {
	i := c.lastText()
	if i < 0 {
		return false
	}
	p := &c.prims[i]
	p.W += pixels
	c.grow(p.X, p.Y, p.X+p.W, p.Y)
	return true
}

// Paint renders the drawing list onto dc with the canvas origin placed at
// (ox, oy). Boxes and decoration lines resolve their style through
// styles.
func (c *Canvas) Paint(dc *gg.Context, ox, oy int, styles StyleResolver) {
	for _, p := range c.prims {
		switch p.Kind {
		case KindBox:
			paintBox(dc, p, ox, oy, styles)
		case KindText:
			paintText(dc, p, ox, oy)
		case KindLine:
			paintLine(dc, p, ox, oy, styles)
		}
	}
}

func resolve(styles StyleResolver, n *html.Node) *css.ComputedValues {
	if styles == nil || n == nil {
		return nil
	}
	return styles(n)
}

func paintBox(dc *gg.Context, p Primitive, ox, oy int, styles StyleResolver) {
	cv := resolve(styles, p.Node)
	if cv == nil {
		return
	}
	x := float64(ox + p.X)
	y := float64(oy + p.Y)
	w := float64(p.W)
	h := float64(p.H)

	if cv.BackgroundColor != nil {
		dc.SetColor(cv.BackgroundColor)
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}

	bw := cv.BorderWidth
	bc := cv.BorderColor
	if bc == nil {
		bc = cv.Color
	}
	dc.SetColor(bc)
	if bw.Top > 0 {
		dc.DrawRectangle(x, y, w, float64(bw.Top))
		dc.Fill()
	}
	if bw.Bottom > 0 {
		dc.DrawRectangle(x, y+h-float64(bw.Bottom), w, float64(bw.Bottom))
		dc.Fill()
	}
	if bw.Left > 0 && p.Flags&BoxOpenLeft == 0 {
		dc.DrawRectangle(x, y, float64(bw.Left), h)
		dc.Fill()
	}
	if bw.Right > 0 && p.Flags&BoxOpenRight == 0 {
		dc.DrawRectangle(x+w-float64(bw.Right), y, float64(bw.Right), h)
		dc.Fill()
	}
}

func paintText(dc *gg.Context, p Primitive, ox, oy int) {
	if face, ok := p.Font.(*text.FaceFont); ok {
		dc.LoadFontFace(face.Path(), face.Size())
	}
	if p.Color != nil {
		dc.SetColor(p.Color)
	}
	dc.DrawString(p.Text, float64(ox+p.X), float64(oy+p.Y))
}

func paintLine(dc *gg.Context, p Primitive, ox, oy int, styles StyleResolver) {
	cv := resolve(styles, p.Node)
	if cv == nil || cv.TextDecoration == 0 {
		return
	}
	dc.SetColor(cv.Color)
	draw := func(y int) {
		dc.DrawRectangle(float64(ox+p.X), float64(oy+y), float64(p.W), 1)
		dc.Fill()
	}
	if cv.TextDecoration&css.DecorationOverline != 0 {
		draw(p.YOver)
	}
	if cv.TextDecoration&css.DecorationLineThrough != 0 {
		draw(p.YThrough)
	}
	if cv.TextDecoration&css.DecorationUnderline != 0 {
		draw(p.YUnder)
	}
}
