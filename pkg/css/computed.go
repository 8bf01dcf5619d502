package css

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/Geballin/tkhtml3/pkg/text"
)

// The core consumes styles through the ComputedValues record below.
// Selector matching and cascading are the style collaborator's problem;
// by the time layout runs, every node has been reduced to one of these.

type WhiteSpace int

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpacePre
	WhiteSpaceNowrap
)

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

type Display int

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayTableCell
	DisplayNone
)

// TextDecoration is a bit set; several decorations may apply at once.
type TextDecoration int

const (
	DecorationUnderline TextDecoration = 1 << iota
	DecorationOverline
	DecorationLineThrough
)

// VerticalAlignKind enumerates the 'vertical-align' variants the inline
// engine resolves. Length carries a pixel value in VerticalAlign.Pixels.
type VerticalAlignKind int

const (
	VerticalAlignBaseline VerticalAlignKind = iota
	VerticalAlignSub
	VerticalAlignSuper
	VerticalAlignTextTop
	VerticalAlignTextBottom
	VerticalAlignMiddle
	VerticalAlignTop
	VerticalAlignBottom
	VerticalAlignLength
)

type VerticalAlign struct {
	Kind   VerticalAlignKind
	Pixels int // used when Kind == VerticalAlignLength
}

// LineHeight is either the keyword "normal", a percentage of the font's
// em size, or an absolute pixel count.
type LineHeight struct {
	Normal  bool
	Percent int // used when Normal is false and Pixels is zero
	Pixels  int
}

// Resolve returns the used line height in pixels for the given font.
// A value of "normal" is equivalent to 120%.
func (lh LineHeight) Resolve(f text.Font) int {
	switch {
	case lh.Normal:
		return (120 * f.EmPixels()) / 100
	case lh.Pixels != 0:
		return lh.Pixels
	default:
		return (lh.Percent * f.EmPixels()) / 100
	}
}

// BoxEdge represents the four sides of a box (top, right, bottom, left).
type BoxEdge struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// Add returns the side-wise sum of two edges.
func (e BoxEdge) Add(o BoxEdge) BoxEdge {
	return BoxEdge{
		Top:    e.Top + o.Top,
		Right:  e.Right + o.Right,
		Bottom: e.Bottom + o.Bottom,
		Left:   e.Left + o.Left,
	}
}

// ComputedValues is the per-node style snapshot consumed by layout.
type ComputedValues struct {
	Font            text.Font
	Color           color.Color
	BackgroundColor color.Color // nil means transparent
	BorderColor     color.Color

	Display        Display
	WhiteSpace     WhiteSpace
	TextAlign      TextAlign
	TextDecoration TextDecoration
	VerticalAlign  VerticalAlign
	LineHeight     LineHeight
	TextIndent     int // used pixels; percentages resolved by the caller

	Margin      BoxEdge
	BorderWidth BoxEdge
	Padding     BoxEdge
}

// Defaults returns the initial values with the given font.
func Defaults(f text.Font) *ComputedValues {
	return &ComputedValues{
		Font:       f,
		Color:      color.Black,
		LineHeight: LineHeight{Normal: true},
	}
}

// ParseLength parses a pixel length value (e.g. "100px" or "100").
func ParseLength(val string) (int, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ParseWhiteSpace maps a 'white-space' keyword to its enum value.
func ParseWhiteSpace(val string) (WhiteSpace, bool) {
	switch strings.TrimSpace(val) {
	case "normal":
		return WhiteSpaceNormal, true
	case "pre":
		return WhiteSpacePre, true
	case "nowrap":
		return WhiteSpaceNowrap, true
	}
	return WhiteSpaceNormal, false
}

// ParseTextAlign maps a 'text-align' keyword to its enum value.
func ParseTextAlign(val string) (TextAlign, bool) {
	switch strings.TrimSpace(val) {
	case "left":
		return TextAlignLeft, true
	case "right":
		return TextAlignRight, true
	case "center":
		return TextAlignCenter, true
	case "justify":
		return TextAlignJustify, true
	}
	return TextAlignLeft, false
}

// ParseVerticalAlign maps a 'vertical-align' keyword or pixel length.
func ParseVerticalAlign(val string) (VerticalAlign, bool) {
	switch strings.TrimSpace(val) {
	case "baseline":
		return VerticalAlign{Kind: VerticalAlignBaseline}, true
	case "sub":
		return VerticalAlign{Kind: VerticalAlignSub}, true
	case "super":
		return VerticalAlign{Kind: VerticalAlignSuper}, true
	case "text-top":
		return VerticalAlign{Kind: VerticalAlignTextTop}, true
	case "text-bottom":
		return VerticalAlign{Kind: VerticalAlignTextBottom}, true
	case "middle":
		return VerticalAlign{Kind: VerticalAlignMiddle}, true
	case "top":
		return VerticalAlign{Kind: VerticalAlignTop}, true
	case "bottom":
		return VerticalAlign{Kind: VerticalAlignBottom}, true
	}
	if px, ok := ParseLength(val); ok {
		return VerticalAlign{Kind: VerticalAlignLength, Pixels: px}, true
	}
	return VerticalAlign{}, false
}
