package css

import (
	"testing"

	"github.com/Geballin/tkhtml3/pkg/text"
)

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"100px", 100, true},
		{" 12 ", 12, true},
		{"0", 0, true},
		{"12em", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLength(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseLength(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLineHeightResolve(t *testing.T) {
	f := text.NewFixedFont(10, 12, 4) // em 16

	if got := (LineHeight{Normal: true}).Resolve(f); got != 19 {
		t.Errorf("normal = %d, want 19 (120%% of em)", got)
	}
	if got := (LineHeight{Pixels: 24}).Resolve(f); got != 24 {
		t.Errorf("pixels = %d, want 24", got)
	}
	if got := (LineHeight{Percent: 150}).Resolve(f); got != 24 {
		t.Errorf("percent = %d, want 24", got)
	}
}

func TestParseVerticalAlign(t *testing.T) {
	if v, ok := ParseVerticalAlign("super"); !ok || v.Kind != VerticalAlignSuper {
		t.Errorf("super = %+v, %v", v, ok)
	}
	if v, ok := ParseVerticalAlign("4px"); !ok || v.Kind != VerticalAlignLength || v.Pixels != 4 {
		t.Errorf("4px = %+v, %v", v, ok)
	}
	if _, ok := ParseVerticalAlign("sideways"); ok {
		t.Error("bogus keyword accepted")
	}
}

func TestParseKeywords(t *testing.T) {
	if v, ok := ParseWhiteSpace("pre"); !ok || v != WhiteSpacePre {
		t.Errorf("pre = %v, %v", v, ok)
	}
	if v, ok := ParseTextAlign("justify"); !ok || v != TextAlignJustify {
		t.Errorf("justify = %v, %v", v, ok)
	}
}

func TestBoxEdgeAdd(t *testing.T) {
	a := BoxEdge{Top: 1, Right: 2, Bottom: 3, Left: 4}
	b := BoxEdge{Top: 10, Right: 20, Bottom: 30, Left: 40}
	got := a.Add(b)
	want := BoxEdge{Top: 11, Right: 22, Bottom: 33, Left: 44}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func TestUserAgentDefaults(t *testing.T) {
	f := text.NewFixedFont(10, 12, 4)

	pre := Defaults(f)
	UserAgent("pre", pre)
	if pre.WhiteSpace != WhiteSpacePre || pre.Display != DisplayBlock {
		t.Errorf("pre defaults: %+v", pre)
	}

	u := Defaults(f)
	UserAgent("u", u)
	if u.TextDecoration&DecorationUnderline == 0 {
		t.Error("u must underline")
	}

	sup := Defaults(f)
	UserAgent("sup", sup)
	if sup.VerticalAlign.Kind != VerticalAlignSuper {
		t.Error("sup must align super")
	}

	script := Defaults(f)
	UserAgent("script", script)
	if script.Display != DisplayNone {
		t.Error("script must not display")
	}
}
