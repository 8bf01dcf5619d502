package script

import (
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/Geballin/tkhtml3/pkg/html"
)

// Runner executes JavaScript script-handler bodies against an engine. It
// exposes a minimal document object whose write/writeln splice text back
// into the parse at the tokenizer's insertion point, so the classic
// document.write pattern round-trips through the reentrant write API.
type Runner struct {
	vm     *goja.Runtime
	engine *html.Engine
	log    *zap.Logger
}

// NewRunner builds a runner bound to the engine.
func NewRunner(e *html.Engine, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		vm:     goja.New(),
		engine: e,
		log:    log,
	}

	doc := r.vm.NewObject()
	if err := doc.Set("write", r.write); err != nil {
		return nil, err
	}
	if err := doc.Set("writeln", r.writeln); err != nil {
		return nil, err
	}
	if err := r.vm.Set("document", doc); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) write(s string) {
	if err := r.engine.WriteText([]byte(s)); err != nil {
		r.log.Warn("document.write failed", zap.Error(err))
	}
}

func (r *Runner) writeln(s string) {
	r.write(s + "\n")
}

// Handler adapts the runner into a ScriptHandler suitable for
// Engine.RegisterScriptHandler: the element body is run as JavaScript
// with the start tag's attributes visible as the `attributes` object.
func (r *Runner) Handler() html.ScriptHandler {
	return func(attr html.Attributes, body []byte) error {
		attrs := r.vm.NewObject()
		for _, a := range attr {
			if err := attrs.Set(a.Name, a.Value); err != nil {
				return err
			}
		}
		if err := r.vm.Set("attributes", attrs); err != nil {
			return err
		}
		if _, err := r.vm.RunString(string(body)); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		return nil
	}
}
