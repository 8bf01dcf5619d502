package script

import (
	"strings"
	"testing"

	"github.com/Geballin/tkhtml3/pkg/html"
)

func newScriptedEngine(t *testing.T) *html.Engine {
	t.Helper()
	e := html.NewEngine(html.Options{})
	r, err := NewRunner(e, nil)
	if err != nil {
		t.Fatal(err)
	}
	info := e.Catalogue().Lookup("script")
	e.RegisterScriptHandler(info.ID, r.Handler())
	return e
}

func TestRunner_DocumentWrite(t *testing.T) {
	e := newScriptedEngine(t)
	src := `<p>a<script>document.write("<b>js</b>")</script>z`
	if err := e.Feed([]byte(src), true); err != nil {
		t.Fatal(err)
	}
	out := e.Root().Serialize()
	if !strings.Contains(out, "<b>js</b>") {
		t.Errorf("written markup missing: %s", out)
	}
	if strings.Contains(out, "document.write") {
		t.Errorf("script body leaked into tree: %s", out)
	}
}

func TestRunner_AttributesVisible(t *testing.T) {
	e := newScriptedEngine(t)
	src := `<script data="payload">document.write(attributes.data)</script>`
	if err := e.Feed([]byte(src), true); err != nil {
		t.Fatal(err)
	}
	if out := e.Root().Serialize(); !strings.Contains(out, "payload") {
		t.Errorf("attribute not visible to script: %s", out)
	}
}

func TestRunner_ScriptErrorDoesNotHaltParse(t *testing.T) {
	e := newScriptedEngine(t)
	src := `<p>a<script>this is not javascript</script>b`
	if err := e.Feed([]byte(src), true); err != nil {
		t.Fatal(err)
	}
	if out := e.Root().Serialize(); !strings.Contains(out, "ab") {
		t.Errorf("parse did not continue past failing script: %s", out)
	}
}
