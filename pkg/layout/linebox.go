package layout

import (
	"go.uber.org/zap"

	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
)

// LineBoxFlags modify GetLineBox.
type LineBoxFlags int

const (
	// ForceLine accepts a partially filled line box (the final line of
	// a paragraph).
	ForceLine LineBoxFlags = 1 << iota

	// ForceBox emits a line containing at least one inline box, even if
	// that box is wider than the available width.
	ForceBox
)

// LineBox is one finished line: a paint-ordered drawing list with its
// total vertical space and the distance from its top to the baseline.
type LineBox struct {
	Canvas *canvas.Canvas
	VSpace int
	Ascent int
	Width  int // used width, excluding alignment shift
}

// absOffset returns the vertical offset of a border relative to the
// logical top of the root inline box, by summing the per-level
// vertical-align deltas up to the root.
func absOffset(b *InlineBorder) int {
	sum := 0
	for p := b; p != nil; p = p.parent {
		sum += p.iVerticalAlign
	}
	return sum
}

// calculateLineBoxWidth decides how many of the accumulated inline boxes
// fit into iReqWidth, greedy left to right. On success ok is true and
// iWidth/nBox/hasText describe the line. On failure ok is false and
// iWidth is either zero (the context cannot produce a line yet) or the
// minimum width required to make progress: the width of the first box,
// or in a nowrap context the width of the whole unbroken line.
func (c *InlineContext) calculateLineBoxWidth(flags LineBoxFlags, iReqWidth int) (iWidth, nBox int, hasText, ok bool) {
	isForceLine := flags&ForceLine != 0
	isForceBox := flags&ForceBox != 0
	nowrap := c.eWhite == css.WhiteSpaceNowrap

	ii := 0
	for ; ii < len(c.aInline); ii++ {
		pBox := &c.aInline[ii]
		if pBox.eType == inlineText || pBox.eType == inlineNewline {
			hasText = true
		}
		iBoxWidth := pBox.nContentPixels + pBox.nRightPixels + pBox.nLeftPixels
		if ii > 0 {
			iBoxWidth += c.aInline[ii-1].nSpace
		}
		if iWidth+iBoxWidth > iReqWidth && !nowrap {
			break
		}
		iWidth += iBoxWidth
		if pBox.eType == inlineNewline {
			ii++
			break
		}
	}
	nBox = ii

	if len(c.aInline) == 0 || (!isForceLine && nBox == len(c.aInline)) {
		// Either the context is empty, or there are not enough boxes
		// to fill the line and ForceLine is not set. This also covers
		// nowrap, which never breaks and so only emits under
		// ForceLine.
		return 0, 0, false, false
	}

	if nBox == 0 && isForceBox {
		// The first box is too wide but ForceBox insists. Hold back
		// the very last box unless ForceLine is set; it may be needed
		// to close an inline border.
		if len(c.aInline) > 1 || isForceLine {
			pBox := &c.aInline[0]
			iWidth = pBox.nContentPixels + pBox.nRightPixels + pBox.nLeftPixels
			nBox = 1
			if len(c.aInline) > 1 && c.aInline[1].eType == inlineNewline {
				nBox++
			}
		} else {
			return 0, 0, false, false
		}
	}

	if nBox == 0 {
		// The first box is too wide and ForceBox is not set. Report
		// the minimum width required to make progress.
		pBox := &c.aInline[0]
		iWidth = pBox.nContentPixels + pBox.nRightPixels + pBox.nLeftPixels
		return iWidth, 0, false, false
	}

	if nowrap && iWidth > iReqWidth && !isForceBox {
		// Too wide for the allocated width; give the caller a chance
		// to offer a wider line instead.
		return iWidth, 0, false, false
	}

	return iWidth, nBox, hasText, true
}

// calculateLineBoxHeight computes the vertical extent of the next line
// box, relative to the logical top of the root inline box: iTop <= 0 <=
// iBottom. Borders with deferred 'top'/'bottom' alignment are resolved
// here, against the extent established by the parent-aligned boxes.
func (c *InlineContext) calculateLineBoxHeight(nBox int, hasText bool) (iTop, iBottom int) {
	quirk := (!hasText && c.mode != html.ModeStandards) || c.ignoreLineHeight

	measure := func(p *InlineBorder) {
		if quirk {
			// Line-height quirk: text-free lines take their height
			// from replaced boxes alone.
			if p.isReplaced {
				iBottom = max(iBottom, p.metrics.Logical)
			}
			return
		}
		if p.eLineboxAlign != alignParent {
			return
		}
		abs := absOffset(p)
		iTop = min(iTop, abs)
		iBottom = max(iBottom, abs+p.metrics.Logical)
	}

	// Borders flowing over from previous lines, then borders opening on
	// this line.
	for p := c.pBorders; p != nil; p = p.next {
		measure(p)
	}
	for ii := 0; ii < nBox; ii++ {
		for p := c.aInline[ii].borderStart; p != nil; p = p.next {
			measure(p)
		}
	}

	if quirk {
		return iTop, iBottom
	}

	// Deferred top/bottom alignment: first make sure the line is tall
	// enough, then pin each border to the line edge.
	resolve := func(p *InlineBorder) {
		if p.eLineboxAlign == alignParent {
			return
		}
		if iBottom-iTop < p.metrics.Logical {
			iBottom = iTop + p.metrics.Logical
		}
		desired := iTop
		if p.eLineboxAlign == alignBottom {
			desired = iBottom - p.metrics.Logical
		}
		p.iVerticalAlign = desired - absOffset(p.parent)
	}
	for p := c.pBorders; p != nil; p = p.next {
		resolve(p)
	}
	for ii := 0; ii < nBox; ii++ {
		for p := c.aInline[ii].borderStart; p != nil; p = p.next {
			resolve(p)
		}
	}

	return iTop, iBottom
}

// GetLineBox extracts the next line box. width is the horizontal space
// on offer. The int result is meaningful only when the LineBox is nil:
// zero means the context cannot produce a line yet (empty, or not enough
// content without ForceLine); a positive value is the minimum width
// needed to make progress (the first box, or a whole nowrap line),
// inviting the caller to try again wider or set ForceBox.
func (c *InlineContext) GetLineBox(width int, flags LineBoxFlags) (*LineBox, int) {
	iReqWidth := width - c.iTextIndent

	iLineWidth, nBox, hasText, ok := c.calculateLineBoxWidth(flags, iReqWidth)
	if !ok {
		return nil, iLineWidth
	}

	iTop, iBottom := c.calculateLineBoxHeight(nBox, hasText)
	vspace := iBottom - iTop
	ascent := -iTop
	if c.rootBorder != nil {
		ascent = c.rootBorder.metrics.Baseline - iTop
	}

	content := canvas.New()
	borders := canvas.New()

	// Adjust the initial left offset and the per-gap extra pixels for
	// 'text-align'. nExtra is how justification is implemented: it is
	// only applied when this is not the context's last line and there
	// is more than one gap.
	iLeft := 0
	nExtra := -10.0
	switch c.eTextAlign {
	case css.TextAlignCenter:
		iLeft = (iReqWidth - iLineWidth) / 2
	case css.TextAlignRight:
		iLeft = iReqWidth - iLineWidth
	case css.TextAlignJustify:
		if nBox > 2 && iReqWidth > iLineWidth && nBox < len(c.aInline) {
			nExtra = float64(iReqWidth-iLineWidth) / float64(nBox-1)
		}
	}
	iLeft += c.iTextIndent
	x := iLeft

	var aReplacedX [][2]int

	for i := 0; i < nBox; i++ {
		pBox := &c.aInline[i]
		boxwidth := pBox.nContentPixels

		// Extra justification pixels between boxes. The last box is
		// placed with the exact remainder so the right margins of
		// adjacent lines align without round-off drift.
		extraPixels := 0
		if nExtra > 0.0 {
			if i < nBox-1 {
				extraPixels = int(nExtra * float64(i))
			} else {
				extraPixels = iReqWidth - iLineWidth
			}
		}

		if !c.isSizeOnly && i > 0 && pBox.eType == inlineText && pBox.node != nil {
			prev := &c.aInline[i-1]
			if prev.eType == inlineText && prev.node != nil {
				f := c.values(pBox.node).Font

				// Successive tokens of one text node separated by
				// exactly one space merge into a single primitive,
				// keeping selection highlights contiguous.
				if pBox.node == prev.node && nExtra <= 0.0 &&
					f.SpacePixels() == prev.nSpace &&
					content.MergeText(pBox.canvas, prev.nSpace) {
					pBox.canvas = canvas.New()
				} else if pBox.nLeftPixels == 0 && prev.nRightPixels == 0 {
					// Otherwise just stretch the previous text
					// over the gap.
					iExtra := 0
					if nExtra > 0.0 {
						iExtra = extraPixels - int(nExtra*float64(i-1))
					}
					content.ExtendText(prev.nSpace + iExtra)
				}
			}
		}

		// Move any borders that start at this box onto the active
		// list, recording where they start for the border pass.
		x1 := x + extraPixels + pBox.nLeftPixels
		for pBorder := pBox.borderStart; pBorder != nil; pBorder = pBorder.next {
			x1 -= pBorder.margin.Left
			x1 -= pBorder.box.Left
			pBorder.iStartBox = i
			pBorder.iStartPixel = x1
			c.iVAlign += pBorder.iVerticalAlign
			if pBorder.next == nil {
				pBorder.next = c.pBorders
				c.pBorders = pBox.borderStart
				break
			}
		}

		// Place the box content. Replaced boxes record their
		// horizontal extent so decorations can skip them.
		x1 = x + extraPixels + pBox.nLeftPixels
		if pBox.eType == inlineReplaced {
			aReplacedX = append(aReplacedX, [2]int{x1, x1 + boxwidth})
		}
		if hasText || c.mode == html.ModeStandards {
			content.DrawCanvas(pBox.canvas, x1, c.iVAlign)
		} else {
			content.DrawCanvas(pBox.canvas, x1, 0)
		}
		x += boxwidth + pBox.nLeftPixels + pBox.nRightPixels

		// Draw borders that end at this box (and, on the last box,
		// every still-active border). Inner borders end first and are
		// composed on top of outer ones.
		x2 := x + extraPixels - pBox.nRightPixels
		nBorderDraw := pBox.nBorderEnd
		if i == nBox-1 {
			nBorderDraw = 0
			for pb := c.pBorders; pb != nil; pb = pb.next {
				nBorderDraw++
			}
		}
		for j := 0; j < nBorderDraw; j++ {
			pBorder := c.pBorders
			for k := 0; k < j; k++ {
				pBorder = pBorder.next
			}
			if pBorder == nil {
				break
			}
			if pBorder.isReplaced {
				continue
			}

			iVerticalOffset := absOffset(pBorder)
			bx1 := iLeft
			if pBorder.iStartBox >= 0 {
				bx1 = pBorder.iStartPixel
			}
			drb := j < pBox.nBorderEnd // draw right border edge
			if drb {
				x2 += pBorder.margin.Right
				x2 += pBorder.box.Right
			}

			nb := canvas.New()
			c.drawBorder(nb, pBorder, bx1, x2, iVerticalOffset, drb, aReplacedX)
			nb.DrawCanvas(borders, 0, 0)
			borders = nb
		}

		// Retire the ended borders.
		for j := 0; j < pBox.nBorderEnd; j++ {
			pb := c.pBorders
			if pb == nil {
				if c.pBoxBorders != nil {
					c.pBoxBorders = c.pBoxBorders.next
				}
				continue
			}
			c.iVAlign -= pb.iVerticalAlign
			c.pBorders = pb.next
		}

		x += pBox.nSpace
	}

	// Borders still active flow onto the next line with no left margin.
	for pb := c.pBorders; pb != nil; pb = pb.next {
		pb.iStartBox = -1
	}

	out := canvas.New()
	out.DrawCanvas(borders, 0, -iTop)
	out.DrawCanvas(content, 0, -iTop)

	c.aInline = c.aInline[:copy(c.aInline, c.aInline[nBox:])]
	c.iTextIndent = 0

	c.log.Debug("line box",
		zap.Int("req-width", iReqWidth),
		zap.Int("boxes", nBox),
		zap.Int("height", vspace),
		zap.Int("ascent", ascent))

	return &LineBox{Canvas: out, VSpace: vspace, Ascent: ascent, Width: iLineWidth}, 0
}

// drawBorder draws one border's box and decorations for the stretch
// [x1, x2]. iVerticalOffset locates the border's logical top relative to
// the root inline box. Decoration segments skip the replaced boxes listed
// in aRepX, so images are never underlined.
func (c *InlineContext) drawBorder(cnv *canvas.Canvas, b *InlineBorder, x1, x2, iVerticalOffset int, drb bool, aRepX [][2]int) {
	if b.node == nil {
		return
	}
	dlb := b.iStartBox >= 0 // draw left border edge

	var flags canvas.BoxFlags
	if !dlb {
		flags |= canvas.BoxOpenLeft
	}
	if !drb {
		flags |= canvas.BoxOpenRight
	}

	if dlb {
		x1 += b.margin.Left
	}
	if drb {
		x2 -= b.margin.Right
	}

	iTop := iVerticalOffset + b.metrics.FontTop - b.box.Top - 1
	iHeight := (b.metrics.FontBottom - b.metrics.FontTop) + b.box.Top + b.box.Bottom + 1

	// The root border never draws a box; it only contributes the
	// block's text-decoration.
	if b.parent != nil {
		cnv.DrawBox(x1, iTop, x2-x1, iHeight, b.node, flags)
	}

	if dlb {
		x1 += b.box.Left
	}
	if drb {
		x2 -= b.box.Right
	}

	yOver := iVerticalOffset - 1
	yUnder := iVerticalOffset + b.metrics.Baseline + 1
	yThrough := iVerticalOffset + b.metrics.Baseline - c.values(b.node).Font.ExPixels()/2

	if len(aRepX) > 0 {
		xa := x1
		for _, rep := range aRepX {
			xs, xe := rep[0], rep[1]
			if xe <= xs {
				continue
			}
			if xs > xa {
				xb := min(xs, x2)
				cnv.DrawLine(xa, xb-xa, yOver, yThrough, yUnder, b.node)
			}
			if xe > xa {
				xa = xe
			}
		}
		if xa < x2 {
			cnv.DrawLine(xa, x2-xa, yOver, yThrough, yUnder, b.node)
		}
	} else {
		cnv.DrawLine(x1, x2-x1, yOver, yThrough, yUnder, b.node)
	}
}
