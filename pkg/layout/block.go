package layout

import (
	"go.uber.org/zap"

	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
)

// Flow is the output of laying out one block's inline content: the
// stacked line boxes as a single drawing list, plus the total height
// consumed.
type Flow struct {
	Canvas *canvas.Canvas
	Height int
	Lines  int
}

// LayoutBlock lays the inline content of block into line boxes stacked
// vertically within the given width. This is the minimal driver for an
// inline formatting context; floats and nested block boxes are the full
// layout engine's business, not this function's.
func LayoutBlock(styles StyleResolver, mode html.Mode, block *html.Node, width int, log *zap.Logger) *Flow {
	c := NewInlineContext(styles, mode, block, false, 0, log)
	c.SetTextIndent(c.values(block).TextIndent)
	root := c.NewBorder(block)
	c.PushBorder(root)

	fillInline(c, block)

	out := canvas.New()
	y := 0
	lines := 0
	for {
		line, minWidth := c.GetLineBox(width, ForceLine)
		if line == nil {
			if c.IsEmpty() {
				break
			}
			if minWidth == 0 {
				break
			}
			// The next box is wider than the block; emit it anyway.
			line, _ = c.GetLineBox(width, ForceLine|ForceBox)
			if line == nil {
				break
			}
		}
		out.DrawCanvas(line.Canvas, 0, y)
		y += line.VSpace
		lines++
	}

	return &Flow{Canvas: out, Height: y, Lines: lines}
}

// fillInline feeds a node's inline content into the context: text runs,
// hard breaks, replaced boxes, and nested inline elements wrapped in
// their borders.
func fillInline(c *InlineContext, n *html.Node) {
	for _, child := range n.Children {
		if child.IsText() {
			c.AddText(child)
			continue
		}

		cv := c.values(child)
		if cv.Display == css.DisplayNone {
			continue
		}

		switch child.Name {
		case "br":
			c.AddHardBreak(child)
			continue
		case "img":
			c.AddBox(child, placeholderImage(child, cv), imgWidth(child), imgHeight(child), 0)
			continue
		}

		border := c.NewBorder(child)
		c.PushBorder(border)
		fillInline(c, child)
		c.PopBorder(border)
	}
}

// imgWidth and imgHeight read the width/height attributes of an image,
// with a browser-like default for images that carry none.
func imgWidth(n *html.Node) int {
	if v, ok := n.GetAttribute("width"); ok {
		if px, ok := css.ParseLength(v); ok {
			return px
		}
	}
	return 32
}

func imgHeight(n *html.Node) int {
	if v, ok := n.GetAttribute("height"); ok {
		if px, ok := css.ParseLength(v); ok {
			return px
		}
	}
	return 32
}

// placeholderImage draws the box rendered for an image the engine has no
// pixels for: its border rectangle in the element's style.
func placeholderImage(n *html.Node, cv *css.ComputedValues) *canvas.Canvas {
	cnv := canvas.New()
	cnv.DrawBox(0, 0, imgWidth(n), imgHeight(n), n, 0)
	return cnv
}
