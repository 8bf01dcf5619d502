package layout

import (
	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
	"github.com/Geballin/tkhtml3/pkg/text"
)

// StyleResolver maps a node to its computed style record.
type StyleResolver = canvas.StyleResolver

// InlineMetrics are the vertical box-size metrics of a non-replaced
// inline element. All four values are distances from the logical top of
// the element's own inline box; positive is down the page.
type InlineMetrics struct {
	FontTop    int // distance to top of font box
	Baseline   int // distance to baseline
	FontBottom int // distance to bottom of font box
	Logical    int // distance to bottom of logical box
}

// values resolves the computed style for n, falling back to the nearest
// styled ancestor and finally to the context's default record. Text runs
// normally inherit their parent element's record this way.
func (c *InlineContext) values(n *html.Node) *css.ComputedValues {
	if c.styles != nil {
		for p := n; p != nil; p = p.Parent {
			if v := c.styles(p); v != nil {
				return v
			}
		}
	}
	if c.fallback == nil {
		c.fallback = css.Defaults(text.NewFixedFont(8, 12, 4))
	}
	return c.fallback
}

// inlineBoxMetrics populates an InlineMetrics with the vertical metrics
// for the non-replaced inline element n. The leading implied by
// line-height is split evenly above and below the font box, with the odd
// pixel going on top.
func (c *InlineContext) inlineBoxMetrics(n *html.Node) InlineMetrics {
	cv := c.values(n)
	f := cv.Font

	lineHeight := cv.LineHeight.Resolve(f)
	contentHeight := f.Ascent() + f.Descent()
	bottomLeading := (lineHeight - contentHeight) / 2

	var m InlineMetrics
	m.Logical = lineHeight
	m.FontBottom = m.Logical - bottomLeading
	m.Baseline = m.FontBottom - f.Descent()
	m.FontTop = m.FontBottom - contentHeight
	return m
}
