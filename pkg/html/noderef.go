package html

import "fmt"

// NodeRef is a weak reference to a tree node handed to external callers
// (scripting commands). The engine may invalidate all outstanding
// references on Reset; every access re-validates the reference and fails
// safely afterwards.
type NodeRef struct {
	e   *Engine
	gen int
	n   *Node
}

// Ref returns a weak reference to n, valid until the next Reset.
func (e *Engine) Ref(n *Node) NodeRef {
	return NodeRef{e: e, gen: e.gen, n: n}
}

func (r NodeRef) resolve() (*Node, error) {
	if r.e == nil || r.n == nil || r.gen != r.e.gen {
		return nil, fmt.Errorf("%w: node reference invalidated", ErrInvalidState)
	}
	return r.n, nil
}

// Valid reports whether the reference still resolves.
func (r NodeRef) Valid() bool {
	_, err := r.resolve()
	return err == nil
}

// TagName returns the node's tag name, or "" for text runs.
func (r NodeRef) TagName() (string, error) {
	n, err := r.resolve()
	if err != nil {
		return "", err
	}
	return n.Name, nil
}

// Attr returns the value of the named attribute.
func (r NodeRef) Attr(name string) (string, error) {
	n, err := r.resolve()
	if err != nil {
		return "", err
	}
	v, _ := n.GetAttribute(name)
	return v, nil
}

// Children returns references to the node's children.
func (r NodeRef) Children() ([]NodeRef, error) {
	n, err := r.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]NodeRef, len(n.Children))
	for i, c := range n.Children {
		out[i] = NodeRef{e: r.e, gen: r.gen, n: c}
	}
	return out, nil
}

// Parent returns a reference to the node's parent, or an invalid
// reference for the root.
func (r NodeRef) Parent() (NodeRef, error) {
	n, err := r.resolve()
	if err != nil {
		return NodeRef{}, err
	}
	return NodeRef{e: r.e, gen: r.gen, n: n.Parent}, nil
}

// Text returns the character data of a text run.
func (r NodeRef) Text() (string, error) {
	n, err := r.resolve()
	if err != nil {
		return "", err
	}
	return n.Text(), nil
}

// OuterHTML serializes the node and its descendants.
func (r NodeRef) OuterHTML() (string, error) {
	n, err := r.resolve()
	if err != nil {
		return "", err
	}
	return n.SerializeOuter(), nil
}
