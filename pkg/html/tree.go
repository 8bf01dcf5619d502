package html

import (
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Mode selects the compatibility profile applied by the tree builder and
// the layout engine.
type Mode int

const (
	ModeStandards Mode = iota
	ModeAlmostStandards
	ModeQuirks
)

// NodeHandler is invoked for matching elements after the tree has been
// fully built. The handler may mutate the subtree rooted at its node.
type NodeHandler func(*Node) error

// TreeBuilder consumes tokenizer events and maintains the document tree.
// Its central job is applying per-element content-model rules that decide,
// for each incoming tag, whether it closes currently open ancestors before
// being inserted.
type TreeBuilder struct {
	cat  *Catalogue
	mode Mode
	xml  bool
	log  *zap.Logger
	ids  tagIDs

	root    *Node
	current *Node

	nodeHandlers map[TagID]NodeHandler

	// OnNodeInserted fires for every node added to the tree.
	OnNodeInserted func(*Node)

	// OnRestyle receives the coalesced "restyle from node X" signal:
	// at most one call per flush, for the shallowest affected ancestor.
	OnRestyle func(*Node)

	restyleFrom *Node
	finished    bool
}

// NewTreeBuilder returns a builder with an empty tree.
func NewTreeBuilder(cat *Catalogue, mode Mode, xml bool, log *zap.Logger) *TreeBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	tb := &TreeBuilder{
		cat:          cat,
		mode:         mode,
		xml:          xml,
		log:          log,
		ids:          resolveTagIDs(cat),
		nodeHandlers: make(map[TagID]NodeHandler),
	}
	tb.reset()
	return tb
}

// Root returns the synthetic document root. Its children are the
// top-level nodes of the parsed document.
func (tb *TreeBuilder) Root() *Node { return tb.root }

// Current returns the deepest open element (the insertion point).
func (tb *TreeBuilder) Current() *Node { return tb.current }

// RegisterNodeHandler registers a callback run over matching elements
// after the tree is fully built.
func (tb *TreeBuilder) RegisterNodeHandler(tag TagID, fn NodeHandler) {
	tb.nodeHandlers[tag] = fn
}

func (tb *TreeBuilder) reset() {
	tb.root = &Node{Type: ElementNode, Name: "document"}
	tb.current = tb.root
	tb.restyleFrom = nil
	tb.finished = false
}

// AddElement handles a StartElement event. The implicit-close probe walks
// up from the insertion point asking each ancestor's content-model rule
// about the incoming tag; the first TagClose pops that ancestor and every
// element below it, a TagOK stops the probe, and reaching the root with
// only TagParent verdicts leaves the tree unchanged.
func (tb *TreeBuilder) AddElement(tok StartToken) {
	tb.implicitClose(tok.Tag)

	node := &Node{
		Type: ElementNode,
		Tag:  tok.Tag,
		Name: tok.Name,
		Attr: tok.Attr,
	}
	tb.insert(node)

	flags := tb.cat.Flags(tok.Tag)
	empty := flags&FlagEmpty != 0
	if tok.SelfClosing && (tb.xml || empty) {
		empty = true
	}
	if !empty {
		tb.current = node
	}
}

// implicitClose runs the content-model probe for an incoming tag. A
// TagClose pops the answering ancestor and everything below it, and the
// probe restarts from the new insertion point: a <tr> arriving inside a
// cell first closes the td, then the enclosing tr.
func (tb *TreeBuilder) implicitClose(tag TagID) {
	for {
		closed := false
	probe:
		for n := tb.current; n != tb.root; n = n.Parent {
			switch tb.contentTest(n, tag) {
			case TagOK:
				return
			case TagClose:
				tb.current = n.Parent
				tb.markRestyle(n)
				closed = true
				break probe
			}
		}
		if !closed {
			return
		}
	}
}

// AddClosingTag handles an EndElement event: the nearest open ancestor
// with a matching tag is closed along with everything below it. A close
// that matches no open element is ignored.
func (tb *TreeBuilder) AddClosingTag(tok EndToken) {
	want := StartTagOf(tok.Tag)
	for n := tb.current; n != tb.root; n = n.Parent {
		if tb.matchesEnd(n, want, tok.Name) {
			tb.current = n.Parent
			tb.markRestyle(n)
			return
		}
	}
}

func (tb *TreeBuilder) matchesEnd(n *Node, want TagID, name string) bool {
	if want == TagUnknown {
		// XML mode: unknown tags match by interned name.
		return n.Tag == TagUnknown && strings.EqualFold(n.Name, name)
	}
	return n.Tag == want
}

// AddText handles a Text event. Incoming text runs the same implicit-
// close probe as elements, using the Text or Space pseudo-tag; the
// fragments then coalesce into the insertion point's trailing text run.
func (tb *TreeBuilder) AddText(tok TextToken) {
	tag := TagSpace
	for _, c := range tok.Text {
		if !isSpace(c) {
			tag = TagText
			break
		}
	}

	tb.implicitClose(tag)

	if last := tb.current.LastChild(); last != nil && last.Type == TextNode {
		last.appendText(tok)
		tb.markRestyle(tb.current)
		return
	}
	node := &Node{Type: TextNode}
	node.appendText(tok)
	tb.insert(node)
}

func (tb *TreeBuilder) insert(node *Node) {
	tb.current.AddChild(node)
	tb.markRestyle(node)
	if tb.OnNodeInserted != nil {
		tb.OnNodeInserted(node)
	}
}

// Finish synthesizes implicit closes up to the root and runs the
// registered node handlers over the tree in post-order. Handlers may
// mutate the subtree rooted at their node; the walk re-reads the child
// list after every callback to tolerate this.
func (tb *TreeBuilder) Finish() error {
	if tb.finished {
		return nil
	}
	tb.finished = true
	tb.current = tb.root

	if len(tb.nodeHandlers) == 0 {
		return nil
	}
	var errs error
	for i := 0; i < len(tb.root.Children); {
		child := tb.root.Children[i]
		errs = multierr.Append(errs, tb.runNodeHandlers(child))
		if child.Parent == tb.root {
			i = child.IndexInParent() + 1
		}
	}
	if errs != nil {
		tb.log.Warn("node handler failures", zap.Error(errs))
	}
	return errs
}

func (tb *TreeBuilder) runNodeHandlers(n *Node) error {
	var errs error
	for i := 0; i < len(n.Children); {
		child := n.Children[i]
		errs = multierr.Append(errs, tb.runNodeHandlers(child))
		// Re-read the child list: continue after child if it is still
		// here, or at the same index if the handler detached it.
		if child.Parent == n {
			i = child.IndexInParent() + 1
		}
	}
	if fn, ok := tb.nodeHandlers[n.Tag]; ok && n.Type == ElementNode {
		errs = multierr.Append(errs, fn(n))
	}
	return errs
}

// markRestyle records that styles are stale from n down. Multiple marks
// within one parse run coalesce to the shallowest affected ancestor.
func (tb *TreeBuilder) markRestyle(n *Node) {
	if n == nil || n == tb.root {
		n = tb.root
	}
	switch {
	case tb.restyleFrom == nil:
		tb.restyleFrom = n
	case tb.restyleFrom.Contains(n):
		// Existing mark already covers n.
	case n.Contains(tb.restyleFrom):
		tb.restyleFrom = n
	default:
		tb.restyleFrom = commonAncestor(tb.restyleFrom, n)
	}
}

// FlushRestyle emits the coalesced restyle signal, if any.
func (tb *TreeBuilder) FlushRestyle() {
	if tb.restyleFrom == nil {
		return
	}
	n := tb.restyleFrom
	tb.restyleFrom = nil
	if tb.OnRestyle != nil {
		tb.OnRestyle(n)
	}
}

func commonAncestor(a, b *Node) *Node {
	da, db := a.Depth(), b.Depth()
	for da > db {
		a = a.Parent
		da--
	}
	for db > da {
		b = b.Parent
		db--
	}
	for a != b {
		a = a.Parent
		b = b.Parent
	}
	return a
}

// Dump returns an indented dump of the tree, one node per line. Intended
// for debugging and the CLI.
func (tb *TreeBuilder) Dump() string {
	var sb strings.Builder
	dumpNode(&sb, tb.root, 0)
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	if n.Type == TextNode {
		sb.WriteString("#text ")
		sb.WriteString(strings.ReplaceAll(n.Text(), "\n", "\\n"))
	} else {
		sb.WriteByte('<')
		sb.WriteString(n.Name)
		for _, a := range n.Attr {
			sb.WriteByte(' ')
			sb.WriteString(a.Name)
			sb.WriteString("=\"")
			sb.WriteString(a.Value)
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		dumpNode(sb, c, depth+1)
	}
}
