package html

import (
	"errors"
	"testing"
)

func scriptID(t *testing.T, e *Engine) TagID {
	t.Helper()
	info := e.Catalogue().Lookup("script")
	if info == nil {
		t.Fatal("no script tag in catalogue")
	}
	return info.ID
}

func TestEngine_EmptyFeedIsNoop(t *testing.T) {
	e := NewEngine(Options{})
	if err := e.Feed(nil, false); err != nil {
		t.Fatalf("empty feed: %v", err)
	}
	if len(e.Root().Children) != 0 {
		t.Error("empty feed changed the tree")
	}
}

func TestEngine_ScriptHandlerReceivesBody(t *testing.T) {
	e := NewEngine(Options{})
	var gotAttr Attributes
	var gotBody string
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		gotAttr = attr
		gotBody = string(body)
		return nil
	})
	if err := e.Feed([]byte(`<p>a<script type="text/javascript">x=1</script>b`), true); err != nil {
		t.Fatal(err)
	}
	if gotBody != "x=1" {
		t.Errorf("body = %q", gotBody)
	}
	if v, _ := gotAttr.Get("type"); v != "text/javascript" {
		t.Errorf("attr type = %q", v)
	}
	// The script element itself never enters the tree.
	assertShape(t, e, "p(#ab)")
}

func TestEngine_WriteTextSplicesAtInsertionPoint(t *testing.T) {
	e := NewEngine(Options{})
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		return e.WriteText([]byte("<b>written</b>"))
	})
	if err := e.Feed([]byte("<p>a<script>ignored</script>z"), true); err != nil {
		t.Fatal(err)
	}
	assertShape(t, e, "p(#a b(#written) #z)")
}

func TestEngine_WriteWaitPausesFeed(t *testing.T) {
	e := NewEngine(Options{})
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		return e.WriteWait()
	})
	if err := e.Feed([]byte("<p>a<script>s</script>b"), true); err != nil {
		t.Fatal(err)
	}
	// Tokenization stopped right after the script element; the trailing
	// text is still pending.
	assertShape(t, e, "p(#a)")

	if err := e.WriteText([]byte("<i>late</i>")); err != nil {
		t.Fatalf("write while waiting: %v", err)
	}
	if err := e.WriteContinue(); err != nil {
		t.Fatal(err)
	}
	assertShape(t, e, "p(#a i(#late) #b)")
}

func TestEngine_WriteProtocolInvalidStates(t *testing.T) {
	e := NewEngine(Options{})
	if err := e.WriteWait(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WriteWait outside handler = %v", err)
	}
	if err := e.WriteContinue(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WriteContinue when not waiting = %v", err)
	}
	if err := e.WriteText([]byte("x")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("WriteText outside handler = %v", err)
	}
}

func TestEngine_InHandlerWaitCancelledByContinue(t *testing.T) {
	e := NewEngine(Options{})
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		if err := e.WriteWait(); err != nil {
			return err
		}
		// Changed our mind before returning: tokenization resumes
		// normally when the handler exits.
		return e.WriteContinue()
	})
	if err := e.Feed([]byte("<p>a<script>s</script>b"), true); err != nil {
		t.Fatal(err)
	}
	assertShape(t, e, "p(#ab)")
}

func TestEngine_ResetDuringHandlerAbandonsFeed(t *testing.T) {
	e := NewEngine(Options{})
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		return e.Reset()
	})
	if err := e.Feed([]byte("<p>a<script>s</script>never parsed"), true); err != nil {
		t.Fatal(err)
	}
	if len(e.Root().Children) != 0 {
		t.Errorf("tree not empty after in-handler reset: %s", outline(e.Root()))
	}
	// The engine is reusable: parsing restarts from an empty buffer.
	if err := e.Feed([]byte("<p>fresh"), true); err != nil {
		t.Fatal(err)
	}
	assertShape(t, e, "p(#fresh)")
}

func TestEngine_ResetInvalidatesNodeRefs(t *testing.T) {
	e := NewEngine(Options{})
	if err := e.Feed([]byte(`<p id="x">hi`), true); err != nil {
		t.Fatal(err)
	}
	ref := e.Ref(e.Root().Children[0])
	if v, err := ref.Attr("id"); err != nil || v != "x" {
		t.Fatalf("attr = %q, %v", v, err)
	}
	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if ref.Valid() {
		t.Error("reference survived reset")
	}
	if _, err := ref.Attr("id"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("access after invalidation = %v", err)
	}
}

func TestEngine_NodeRefNavigation(t *testing.T) {
	e := NewEngine(Options{})
	if err := e.Feed([]byte("<div><p>one</p></div>"), true); err != nil {
		t.Fatal(err)
	}
	root := e.Ref(e.Root())
	kids, err := root.Children()
	if err != nil || len(kids) != 1 {
		t.Fatalf("children: %v, %v", kids, err)
	}
	name, _ := kids[0].TagName()
	if name != "div" {
		t.Errorf("tag = %q", name)
	}
	outer, _ := kids[0].OuterHTML()
	if outer != "<div><p>one</p></div>" {
		t.Errorf("outer = %q", outer)
	}
	parent, _ := kids[0].Parent()
	if !parent.Valid() {
		t.Error("parent ref invalid")
	}
}

func TestEngine_FragmentSkipsScriptHandlers(t *testing.T) {
	e := NewEngine(Options{})
	called := false
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		called = true
		return nil
	})
	frag, err := e.Fragment([]byte("<p>x<script>s</script></p>"))
	if err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("script handler fired for a fragment")
	}
	if got := outline(frag); got != "p(#x script(#s))" {
		t.Errorf("fragment shape = %s", got)
	}
}

func TestEngine_HandlerErrorDoesNotHaltParsing(t *testing.T) {
	e := NewEngine(Options{})
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, body []byte) error {
		return errors.New("boom")
	})
	if err := e.Feed([]byte("<p>a<script>s</script>b"), true); err != nil {
		t.Fatal(err)
	}
	assertShape(t, e, "p(#ab)")
}

func TestEngine_FeedChunksAcrossScript(t *testing.T) {
	e := NewEngine(Options{})
	var body string
	e.RegisterScriptHandler(scriptID(t, e), func(attr Attributes, b []byte) error {
		body = string(b)
		return nil
	})
	for _, part := range []string{"<p>a<scr", "ipt>x=", "1</scri", "pt>b"} {
		if err := e.Feed([]byte(part), false); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Feed(nil, true); err != nil {
		t.Fatal(err)
	}
	if body != "x=1" {
		t.Errorf("body = %q", body)
	}
	assertShape(t, e, "p(#ab)")
}
