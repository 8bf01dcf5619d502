package layout

import (
	"testing"

	"github.com/Geballin/tkhtml3/pkg/canvas"
	"github.com/Geballin/tkhtml3/pkg/css"
	"github.com/Geballin/tkhtml3/pkg/html"
)

func TestLayoutBlock_WrapsAndStacks(t *testing.T) {
	font := testFont()
	font.SpacePx = 10
	block, _ := newBlock("aaaa", "bbbb", "cccc")
	styles := styleMap{block: css.Defaults(font)}

	flow := LayoutBlock(styles.resolver(), html.ModeStandards, block, 100, nil)
	if flow.Lines != 2 {
		t.Fatalf("lines = %d, want 2", flow.Lines)
	}
	// Two 19px lines (120% of the 16px em).
	if flow.Height != 38 {
		t.Errorf("height = %d, want 38", flow.Height)
	}
}

func TestLayoutBlock_NestedInlineBorders(t *testing.T) {
	font := testFont()
	block := &html.Node{Type: html.ElementNode, Name: "p"}
	span := &html.Node{Type: html.ElementNode, Name: "b"}
	run := &html.Node{Type: html.TextNode, Segs: []html.Seg{{Kind: html.SegText, Data: "word"}}}
	span.AddChild(run)
	block.AddChild(span)

	cv := css.Defaults(font)
	spanCV := css.Defaults(font)
	spanCV.BorderWidth = css.BoxEdge{Top: 1, Right: 1, Bottom: 1, Left: 1}
	styles := styleMap{block: cv, span: spanCV}

	flow := LayoutBlock(styles.resolver(), html.ModeStandards, block, 200, nil)
	if flow.Lines != 1 {
		t.Fatalf("lines = %d", flow.Lines)
	}
	var haveBox, haveText bool
	for _, p := range flow.Canvas.Primitives() {
		switch p.Kind {
		case canvas.KindBox:
			haveBox = true
		case canvas.KindText:
			haveText = true
		}
	}
	if !haveBox || !haveText {
		t.Errorf("expected border box and text, box=%v text=%v", haveBox, haveText)
	}
}

func TestLayoutBlock_HardBreak(t *testing.T) {
	font := testFont()
	block := &html.Node{Type: html.ElementNode, Name: "p"}
	run1 := &html.Node{Type: html.TextNode, Segs: []html.Seg{{Kind: html.SegText, Data: "a"}}}
	br := &html.Node{Type: html.ElementNode, Name: "br"}
	run2 := &html.Node{Type: html.TextNode, Segs: []html.Seg{{Kind: html.SegText, Data: "b"}}}
	block.AddChild(run1)
	block.AddChild(br)
	block.AddChild(run2)
	styles := styleMap{block: css.Defaults(font), br: css.Defaults(font)}

	flow := LayoutBlock(styles.resolver(), html.ModeStandards, block, 500, nil)
	if flow.Lines != 2 {
		t.Errorf("lines = %d, want 2 (hard break)", flow.Lines)
	}
}

func TestLayoutBlock_OverflowingWordForced(t *testing.T) {
	block, _ := newBlock("aaaaaaaaaaaaaaaaaaaa") // 200px word
	styles := styleMap{block: css.Defaults(testFont())}

	flow := LayoutBlock(styles.resolver(), html.ModeStandards, block, 50, nil)
	if flow.Lines != 1 {
		t.Errorf("lines = %d, want 1 forced line", flow.Lines)
	}
}
