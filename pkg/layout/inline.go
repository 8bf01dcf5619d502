package layout

import (
	"go.uber.org/zap"

	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
)

// The InlineContext encapsulates the details of laying out one inline
// formatting context. The block that establishes the context feeds it
// content through PushBorder/PopBorder/AddText/AddBox and drains finished
// lines through GetLineBox.

type inlineBoxType int

const (
	inlineText inlineBoxType = iota
	inlineReplaced
	inlineNewline
)

// lineboxAlign distinguishes borders aligned relative to their parent
// from those deferred to line-box emission ('vertical-align' top/bottom).
type lineboxAlign int

const (
	alignParent lineboxAlign = iota
	alignTop
	alignBottom
)

// InlineBorder represents the margin/padding/border and vertical
// alignment contribution of one nested inline element. Borders form a
// stack around the boxes they cover; the root of the context is a
// synthetic border that carries the block's baseline and decoration but
// draws no box.
type InlineBorder struct {
	margin  css.BoxEdge // margin quad
	box     css.BoxEdge // combined border+padding quad
	metrics InlineMetrics

	// iVerticalAlign is the pixel offset between the logical top of the
	// parent's box and this element's box; positive is further down the
	// page. For eLineboxAlign != alignParent it is resolved afresh at
	// each line-box emission.
	iVerticalAlign int
	eLineboxAlign  lineboxAlign

	iStartBox   int // index of leftmost covered box; -1 after a line break
	iStartPixel int // x-coordinate of the left margin edge
	node        *html.Node

	// isReplaced marks borders that only exist to vertically align a
	// replaced object; they draw no border or decoration graphics.
	isReplaced bool

	next   *InlineBorder // stack link
	parent *InlineBorder
}

// Node returns the document node that generated this border.
func (b *InlineBorder) Node() *html.Node { return b.node }

// inlineBox is a single inline box: a word of text, a replaced object or
// an explicit newline.
type inlineBox struct {
	canvas *canvas.Canvas
	nSpace int // pixels of space between this and the next box
	eType  inlineBoxType

	borderStart *InlineBorder // borders that start with this box
	node        *html.Node
	nBorderEnd  int // number of borders that end here

	nLeftPixels    int // total left widths of borders starting here
	nRightPixels   int // total right widths of borders ending here
	nContentPixels int

	nAscentPixels  int
	nDescentPixels int
	nEmPixels      int
}

// InlineContext accumulates inline boxes for one block and packs them
// into line boxes on demand. It is transient: created per block during
// layout and discarded once its lines have been emitted.
type InlineContext struct {
	log    *zap.Logger
	styles StyleResolver
	mode   html.Mode

	node       *html.Node // block that generated the context
	isSizeOnly bool       // measuring only; use left alignment

	// Effective values of 'text-align' and 'white-space' for the whole
	// context: nested inline elements cannot change them.
	eTextAlign css.TextAlign
	eWhite     css.WhiteSpace

	iTextIndent      int // indent for the next (first) line
	ignoreLineHeight bool

	aInline []inlineBox

	iVAlign int // current vertical box offset while emitting a line

	pBorders    *InlineBorder // active borders, innermost first
	pBoxBorders *InlineBorder // borders waiting for the next box
	rootBorder  *InlineBorder
	current     *InlineBorder // innermost pushed, not yet popped

	fallback *css.ComputedValues

	lastIndex int // running character index for text primitives
}

// NewInlineContext creates an inline context for the block node. If
// isSizeOnly is set the context is only used to estimate sizes: alignment
// is forced to left. textIndent is the used value, in pixels, of the
// block's 'text-indent' (percentages are the caller's problem).
func NewInlineContext(styles StyleResolver, mode html.Mode, node *html.Node, isSizeOnly bool, textIndent int, log *zap.Logger) *InlineContext {
	if log == nil {
		log = zap.NewNop()
	}
	c := &InlineContext{
		log:        log.Named("layoutengine"),
		styles:     styles,
		mode:       mode,
		node:       node,
		isSizeOnly: isSizeOnly,
	}

	cv := c.values(node)
	c.eWhite = cv.WhiteSpace
	c.eTextAlign = cv.TextAlign

	// An entire inline context has a single 'text-align', the one of
	// the generating block. Justification only applies to wrapped
	// normal-whitespace text.
	if isSizeOnly {
		c.eTextAlign = css.TextAlignLeft
	} else if cv.WhiteSpace != css.WhiteSpaceNormal && c.eTextAlign == css.TextAlignJustify {
		c.eTextAlign = css.TextAlignLeft
	}

	if mode != html.ModeStandards && cv.Display == css.DisplayTableCell {
		c.ignoreLineHeight = true
	}

	c.iTextIndent = textIndent

	c.log.Debug("new inline context",
		zap.Int("text-indent", textIndent),
		zap.Bool("size-only", isSizeOnly))
	return c
}

// Node returns the block node that generated the context.
func (c *InlineContext) Node() *html.Node { return c.node }

// IsEmpty reports whether no inline boxes are currently accumulated.
func (c *InlineContext) IsEmpty() bool { return len(c.aInline) == 0 }

// SetTextIndent overrides the indent applied to the next emitted line.
func (c *InlineContext) SetTextIndent(px int) { c.iTextIndent = px }

// NewBorder builds an InlineBorder for node. For anything but the root of
// the context it captures the node's margin and combined border+padding;
// the root only contributes metrics and decoration, never a drawn box.
func (c *InlineContext) NewBorder(node *html.Node) *InlineBorder {
	b := &InlineBorder{node: node, metrics: c.inlineBoxMetrics(node)}
	if c.current != nil {
		cv := c.values(node)
		b.margin = cv.Margin
		b.box = cv.BorderWidth.Add(cv.Padding)
	}
	return b
}

// PushBorder opens an inline border around the boxes about to be added.
// Vertical alignment is resolved now, against the parent border's
// metrics; only 'top' and 'bottom' wait until line-box emission.
func (c *InlineContext) PushBorder(b *InlineBorder) {
	if b == nil {
		return
	}
	b.next = c.pBoxBorders
	c.pBoxBorders = b
	b.parent = c.current
	c.current = b

	if b.parent == nil {
		c.rootBorder = b
		return
	}

	cv := c.values(b.node)
	pM := &b.parent.metrics
	m := &b.metrics
	iVert := 0

	switch cv.VerticalAlign.Kind {
	case css.VerticalAlignLength:
		iVert = pM.Baseline - m.Baseline
		iVert -= cv.VerticalAlign.Pixels

	case css.VerticalAlignBaseline:
		iVert = pM.Baseline - m.Baseline

	case css.VerticalAlignSub:
		iVert = pM.Baseline - m.Baseline
		iVert += c.parentFontEx(b)

	case css.VerticalAlignSuper:
		iVert = pM.Baseline - m.Baseline
		iVert -= cv.Font.ExPixels()

	case css.VerticalAlignTextTop:
		iVert = pM.FontTop

	case css.VerticalAlignTextBottom:
		iVert = pM.FontBottom - m.Logical

	case css.VerticalAlignMiddle:
		iVert = pM.Baseline - m.Logical/2
		iVert -= c.parentFontEx(b) / 2

	case css.VerticalAlignTop:
		b.eLineboxAlign = alignTop

	case css.VerticalAlignBottom:
		b.eLineboxAlign = alignBottom
	}

	b.iVerticalAlign = iVert
	c.log.Debug("push border", zap.Int("vertical-offset", iVert))
}

// parentFontEx returns the ex height of the font of the node enclosing
// b's node.
func (c *InlineContext) parentFontEx(b *InlineBorder) int {
	n := b.node
	if n != nil && n.Parent != nil {
		n = n.Parent
	} else if b.parent != nil {
		n = b.parent.node
	}
	return c.values(n).Font.ExPixels()
}

// PopBorder closes the innermost open border: the most recently added
// inline box becomes the last one it covers. Popping a border that has
// covered no box discards it, so an empty inline element produces no
// drawable output.
func (c *InlineContext) PopBorder(b *InlineBorder) {
	if b == nil {
		return
	}
	c.current = c.current.parent

	if c.pBoxBorders != nil {
		// The border never received a box: it came from markup like
		// <a href=""></a>. Drop it; it will never be drawn.
		c.pBoxBorders = c.pBoxBorders.next
		return
	}

	if len(c.aInline) > 0 {
		pBox := &c.aInline[len(c.aInline)-1]
		pBox.nBorderEnd++
		pBox.nRightPixels += b.box.Right
		pBox.nRightPixels += b.margin.Right
	} else {
		// All covered boxes were already consumed into line boxes;
		// the border closes with nothing left on this line.
		pb := c.pBorders
		if pb != nil {
			c.pBorders = pb.next
			c.iVAlign -= pb.iVerticalAlign
		}
	}
}

// addInlineCanvas appends a new inline box and returns a canvas for its
// content. Any borders queued by PushBorder become starting borders of
// this box.
func (c *InlineContext) addInlineCanvas(eType inlineBoxType, node *html.Node) *canvas.Canvas {
	box := inlineBox{
		canvas:      canvas.New(),
		eType:       eType,
		node:        node,
		borderStart: c.pBoxBorders,
	}
	for b := box.borderStart; b != nil; b = b.next {
		box.nLeftPixels += b.box.Left
		box.nLeftPixels += b.margin.Left
	}
	c.pBoxBorders = nil
	c.aInline = append(c.aInline, box)
	return box.canvas
}

// setBoxDimensions records the effective size of the most recently added
// inline box. The canvas origin (0, 0) is at the far left of the content,
// on the baseline.
func (c *InlineContext) setBoxDimensions(width, ascent, descent, emPixels int) {
	pBox := &c.aInline[len(c.aInline)-1]
	pBox.nContentPixels = width
	pBox.nAscentPixels = ascent
	pBox.nDescentPixels = descent
	pBox.nEmPixels = emPixels
}

// addSpace adds white-space pixels after the most recent box. In pre and
// nowrap contexts spaces accumulate; otherwise adjacent whitespace
// collapses to a single space.
func (c *InlineContext) addSpace(nPixels int) {
	if len(c.aInline) == 0 {
		return
	}
	pBox := &c.aInline[len(c.aInline)-1]
	if c.eWhite == css.WhiteSpacePre || c.eWhite == css.WhiteSpaceNowrap {
		pBox.nSpace += nPixels
	} else if nPixels > pBox.nSpace {
		pBox.nSpace = nPixels
	}
}

// addNewLine appends an explicit line-break box followed by an empty text
// box that accounts for any space after the break.
func (c *InlineContext) addNewLine(nHeight int) {
	c.addInlineCanvas(inlineNewline, nil)
	c.aInline[len(c.aInline)-1].nEmPixels = nHeight
	c.addInlineCanvas(inlineText, nil)
	c.setBoxDimensions(0, 0, 0, 0)
}

// AddText appends one inline box per text fragment of the run node.
// White-space handling follows the context's effective 'white-space':
// in pre contexts newlines become explicit break boxes; in pre and nowrap
// contexts spaces accumulate; otherwise whitespace collapses onto the
// previous box.
func (c *InlineContext) AddText(node *html.Node) {
	if node == nil || !node.IsText() {
		return
	}
	cv := c.values(node)
	f := cv.Font
	sw := f.SpacePixels()
	nh := f.Ascent() + f.Descent()

	for _, seg := range node.Segs {
		switch seg.Kind {
		case html.SegText:
			cnv := c.addInlineCanvas(inlineText, node)
			tw := f.TextWidth(seg.Data)
			c.setBoxDimensions(tw, f.Ascent(), f.Descent(), f.EmPixels())
			y := c.current.metrics.Baseline
			cnv.DrawText(0, y, seg.Data, f, cv.Color, node, c.lastIndex)
			c.lastIndex += len(seg.Data)
			c.ignoreLineHeight = false

		case html.SegNewline:
			if c.eWhite == css.WhiteSpacePre {
				c.addNewLine(nh)
			} else {
				c.addSpace(sw)
			}
			c.lastIndex++

		case html.SegSpace:
			if c.eWhite == css.WhiteSpacePre && c.IsEmpty() {
				// Leading spaces in a pre need a zero-width
				// carrier box.
				c.addInlineCanvas(inlineText, nil)
				c.setBoxDimensions(0, 0, 0, 0)
			}
			for i := 0; i < seg.Count; i++ {
				c.addSpace(sw)
			}
			c.lastIndex++
		}
	}
}

// AddHardBreak appends an explicit line break (a <br> element). The
// break box takes the height of the surrounding font so an empty line
// still has extent.
func (c *InlineContext) AddHardBreak(node *html.Node) {
	f := c.values(node).Font
	c.addNewLine(f.Ascent() + f.Descent())
}

// AddBox appends a pre-rendered replaced box (an image, or anything laid
// out as one, like an inline-block). Margins, borders and padding of the
// replaced element are the caller's problem: (0, 0) on cnv is the top
// left of the margin box. iOffset is the distance from the bottom of the
// box to the baseline, almost always negative or zero.
func (c *InlineContext) AddBox(node *html.Node, cnv *canvas.Canvas, iWidth, iHeight, iOffset int) {
	if iWidth == 0 {
		return
	}

	ascent := -1 * iOffset
	descent := iHeight + iOffset

	b := &InlineBorder{
		isReplaced: true,
		node:       node,
		metrics: InlineMetrics{
			FontTop:    0,
			Baseline:   iHeight,
			FontBottom: iHeight,
			Logical:    iHeight,
		},
	}
	c.PushBorder(b)
	target := c.addInlineCanvas(inlineReplaced, node)
	target.DrawCanvas(cnv, 0, 0)
	c.PopBorder(b)

	c.setBoxDimensions(iWidth, ascent, descent, 0)
}
