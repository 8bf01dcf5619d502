package html

import (
	"fmt"

	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	Mode   Mode
	XML    bool
	Logger *zap.Logger
}

// Engine owns the document buffer, the tokenizer and the tree builder,
// and exposes the streaming write API. All operations are single-threaded
// cooperative: nothing blocks, and the only suspension points are the
// explicit WriteWait/WriteContinue pair.
type Engine struct {
	opts Options
	log  *zap.Logger

	cat  *Catalogue
	tok  *Tokenizer
	tree *TreeBuilder

	gen      int // bumped on Reset; invalidates outstanding NodeRefs
	poisoned bool

	// OnRestyle, if set, receives the coalesced restyle signal after
	// each feed. OnNodeInserted fires per inserted node.
	OnRestyle      func(*Node)
	OnNodeInserted func(*Node)
}

// NewEngine constructs an engine with an immutable tag catalogue and an
// empty document.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	e := &Engine{
		opts: opts,
		log:  opts.Logger,
		cat:  NewCatalogue(),
	}
	e.wire()
	return e
}

func (e *Engine) wire() {
	e.tok = NewTokenizer(e.cat, e.opts.XML, e.log)
	e.tree = NewTreeBuilder(e.cat, e.opts.Mode, e.opts.XML, e.log)
	e.tok.OnText = e.tree.AddText
	e.tok.OnStart = e.tree.AddElement
	e.tok.OnEnd = e.tree.AddClosingTag
	e.tree.OnRestyle = func(n *Node) {
		if e.OnRestyle != nil {
			e.OnRestyle(n)
		}
	}
	e.tree.OnNodeInserted = func(n *Node) {
		if e.OnNodeInserted != nil {
			e.OnNodeInserted(n)
		}
	}
}

// Catalogue returns the engine's tag catalogue.
func (e *Engine) Catalogue() *Catalogue { return e.cat }

// Mode returns the compatibility profile the engine was built with.
func (e *Engine) Mode() Mode { return e.opts.Mode }

// Root returns the document root.
func (e *Engine) Root() *Node { return e.tree.Root() }

// Tree returns the tree builder.
func (e *Engine) Tree() *TreeBuilder { return e.tree }

// RegisterScriptHandler registers a script handler for the named tag.
// The callback receives the start tag's attributes and the element body.
func (e *Engine) RegisterScriptHandler(tag TagID, fn ScriptHandler) {
	e.tok.RegisterScript(tag, fn)
}

// RegisterNodeHandler registers a node handler for the named tag, run
// over the finished tree in post-order.
func (e *Engine) RegisterNodeHandler(tag TagID, fn NodeHandler) {
	e.tree.RegisterNodeHandler(tag, fn)
}

// Feed appends bytes to the document and parses as far as possible.
// Feeding no bytes with isFinal false is a no-op.
func (e *Engine) Feed(b []byte, isFinal bool) (err error) {
	if e.poisoned {
		return ErrEngineUnusable
	}
	defer e.trap(&err)

	e.tok.Feed(b, isFinal)
	if e.tok.Final() && !e.tok.Waiting() {
		e.tree.Finish()
	}
	e.tree.FlushRestyle()
	return nil
}

// WriteText splices bytes at the tokenizer's insertion point. Only valid
// from inside a script handler or while tokenization is paused.
func (e *Engine) WriteText(b []byte) error {
	if e.poisoned {
		return ErrEngineUnusable
	}
	return e.tok.WriteText(b)
}

// WriteWait pauses tokenization when the current script handler returns.
func (e *Engine) WriteWait() error {
	if e.poisoned {
		return ErrEngineUnusable
	}
	return e.tok.WriteWait()
}

// WriteContinue resumes a paused engine.
func (e *Engine) WriteContinue() (err error) {
	if e.poisoned {
		return ErrEngineUnusable
	}
	defer e.trap(&err)

	resumed, err := e.tok.WriteContinue()
	if err != nil {
		return err
	}
	if resumed {
		if e.tok.Final() && !e.tok.Waiting() {
			e.tree.Finish()
		}
		e.tree.FlushRestyle()
	}
	return nil
}

// Reset discards the tree, the document buffer and all caches, and
// invalidates every outstanding node reference. A reset issued from
// inside a script handler abandons the remainder of the current feed; the
// caller is expected to restart parsing from the now empty buffer.
func (e *Engine) Reset() error {
	if e.poisoned {
		return ErrEngineUnusable
	}
	e.gen++
	e.tok.reset()
	e.tree.reset()
	return nil
}

// Fragment parses an HTML fragment into a detached tree using the
// engine's catalogue and mode. Script handlers are never fired for
// fragments.
func (e *Engine) Fragment(src []byte) (*Node, error) {
	if e.poisoned {
		return nil, ErrEngineUnusable
	}
	tok := NewTokenizer(e.cat, e.opts.XML, e.log)
	tok.fragment = true
	tree := NewTreeBuilder(e.cat, e.opts.Mode, e.opts.XML, e.log)
	tok.OnText = tree.AddText
	tok.OnStart = tree.AddElement
	tok.OnEnd = tree.AddClosingTag
	tok.Feed(src, true)
	tree.current = tree.root
	return tree.Root(), nil
}

// trap converts a panic during parsing into a poisoned engine. Subsequent
// operations fail with ErrEngineUnusable.
func (e *Engine) trap(err *error) {
	if r := recover(); r != nil {
		e.poisoned = true
		e.log.Error("engine poisoned", zap.Any("panic", r))
		*err = fmt.Errorf("%w: %v", ErrEngineUnusable, r)
	}
}
