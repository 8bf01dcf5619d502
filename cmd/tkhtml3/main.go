package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
	"github.com/Geballin/tkhtml3/pkg/layout"
	"github.com/Geballin/tkhtml3/pkg/script"
	"github.com/Geballin/tkhtml3/pkg/text"
)

var (
	flagMode     = flag.String("mode", "standards", "parse mode: standards, almost, quirks")
	flagXML      = flag.Bool("xml", false, "parse as XML (CDATA, self-closing, unknown tags)")
	flagDump     = flag.Bool("dump", false, "print the document tree and exit")
	flagJS       = flag.Bool("js", false, "run <script> bodies through the JavaScript runner")
	flagOut      = flag.String("out", "", "render line boxes to this PNG file")
	flagWidth    = flag.Int("width", 640, "layout width in pixels")
	flagFont     = flag.String("font", "", "TTF font file for measurement and rendering")
	flagFontSize = flag.Float64("fontsize", 16, "font size in points")
	flagVerbose  = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tkhtml3: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := zap.NewNop()
	if *flagVerbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		log = l
	}

	mode := html.ModeStandards
	switch *flagMode {
	case "standards":
	case "almost":
		mode = html.ModeAlmostStandards
	case "quirks":
		mode = html.ModeQuirks
	default:
		return fmt.Errorf("unknown mode %q", *flagMode)
	}

	src, err := readInput()
	if err != nil {
		return err
	}

	engine := html.NewEngine(html.Options{Mode: mode, XML: *flagXML, Logger: log})

	if *flagJS {
		runner, err := script.NewRunner(engine, log)
		if err != nil {
			return err
		}
		if info := engine.Catalogue().Lookup("script"); info != nil {
			engine.RegisterScriptHandler(info.ID, runner.Handler())
		}
	}

	// Feed in chunks to exercise the streaming path.
	const chunk = 4096
	for len(src) > chunk {
		if err := engine.Feed(src[:chunk], false); err != nil {
			return err
		}
		src = src[chunk:]
	}
	if err := engine.Feed(src, true); err != nil {
		return err
	}

	if *flagDump {
		fmt.Print(engine.Tree().Dump())
		return nil
	}

	if *flagOut != "" {
		return render(engine, log)
	}

	fmt.Print(engine.Tree().Dump())
	return nil
}

func readInput() ([]byte, error) {
	if flag.NArg() > 0 {
		return os.ReadFile(flag.Arg(0))
	}
	return io.ReadAll(os.Stdin)
}

// loadFont returns the measuring font: the TTF named on the command line,
// or fixed metrics when rendering without one.
func loadFont() (text.Font, error) {
	if *flagFont != "" {
		return text.LoadFont(*flagFont, *flagFontSize)
	}
	size := int(*flagFontSize)
	return text.NewFixedFont(size*6/10, size*8/10, size*2/10), nil
}

// styleTree computes a ComputedValues record for every element: the
// user-agent defaults for the tag, inherited values from the parent, and
// whatever the style attribute overrides. This stands in for the real
// style collaborator.
func styleTree(root *html.Node, font text.Font) map[*html.Node]*css.ComputedValues {
	styles := make(map[*html.Node]*css.ComputedValues)

	var walk func(n *html.Node, parent *css.ComputedValues)
	walk = func(n *html.Node, parent *css.ComputedValues) {
		if n.Type != html.ElementNode {
			return
		}
		cv := *parent // inherit
		cv.Display = css.DisplayInline
		cv.VerticalAlign = css.VerticalAlign{}
		cv.Margin = css.BoxEdge{}
		cv.Padding = css.BoxEdge{}
		cv.BorderWidth = css.BoxEdge{}

		css.UserAgent(n.Name, &cv)
		if attr, ok := n.GetAttribute("style"); ok {
			applyStyleAttr(&cv, attr)
		}
		if attr, ok := n.GetAttribute("align"); ok {
			if ta, ok := css.ParseTextAlign(attr); ok {
				cv.TextAlign = ta
			}
		}

		styles[n] = &cv
		for _, c := range n.Children {
			walk(c, &cv)
		}
	}

	walk(root, css.Defaults(font))
	return styles
}

// applyStyleAttr understands the handful of declarations the layout core
// consumes. Anything else in the attribute is ignored.
func applyStyleAttr(cv *css.ComputedValues, attr string) {
	for _, decl := range strings.Split(attr, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.ToLower(name))
		value = strings.TrimSpace(value)
		switch name {
		case "text-align":
			if v, ok := css.ParseTextAlign(value); ok {
				cv.TextAlign = v
			}
		case "white-space":
			if v, ok := css.ParseWhiteSpace(value); ok {
				cv.WhiteSpace = v
			}
		case "vertical-align":
			if v, ok := css.ParseVerticalAlign(value); ok {
				cv.VerticalAlign = v
			}
		case "text-indent":
			if px, ok := css.ParseLength(value); ok {
				cv.TextIndent = px
			}
		case "text-decoration":
			switch value {
			case "underline":
				cv.TextDecoration |= css.DecorationUnderline
			case "overline":
				cv.TextDecoration |= css.DecorationOverline
			case "line-through":
				cv.TextDecoration |= css.DecorationLineThrough
			case "none":
				cv.TextDecoration = 0
			}
		}
	}
}

// blockRoots returns the elements that establish inline formatting
// contexts worth rendering: block-level elements with at least one child
// that is text or inline.
func blockRoots(n *html.Node, styles map[*html.Node]*css.ComputedValues, out *[]*html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	cv := styles[n]
	if cv != nil && cv.Display == css.DisplayNone {
		return
	}
	if cv != nil && cv.Display != css.DisplayInline && hasInlineContent(n, styles) {
		*out = append(*out, n)
		return
	}
	for _, c := range n.Children {
		blockRoots(c, styles, out)
	}
}

func hasInlineContent(n *html.Node, styles map[*html.Node]*css.ComputedValues) bool {
	for _, c := range n.Children {
		if c.IsText() {
			return true
		}
		if cv := styles[c]; cv == nil || cv.Display == css.DisplayInline {
			return true
		}
	}
	return false
}

func render(engine *html.Engine, log *zap.Logger) error {
	font, err := loadFont()
	if err != nil {
		return err
	}
	styles := styleTree(engine.Root(), font)
	resolver := func(n *html.Node) *css.ComputedValues { return styles[n] }

	var blocks []*html.Node
	for _, c := range engine.Root().Children {
		blockRoots(c, styles, &blocks)
	}

	page := canvas.New()
	y := 0
	for _, block := range blocks {
		flow := layout.LayoutBlock(resolver, engine.Mode(), block, *flagWidth, log)
		page.DrawCanvas(flow.Canvas, 0, y)
		y += flow.Height
	}
	if y == 0 {
		y = 1
	}

	dc := gg.NewContext(*flagWidth, y)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	page.Paint(dc, 0, 0, resolver)
	return dc.SavePNG(*flagOut)
}
