package stanza

// Node is either a text run or a child element. The zero Node is a text
// node holding the empty string; callers always go through NewTextNode /
// NewElementNode rather than constructing one directly.
type Node struct {
	text string
	el   *Element
}

// NewTextNode wraps a text run as a Node.
func NewTextNode(s string) Node { return Node{text: s} }

// NewElementNode wraps an element handle as a Node.
func NewElementNode(el *Element) Node { return Node{el: el} }

// IsElement reports whether n holds an element rather than text.
func (n Node) IsElement() bool { return n.el != nil }

// AsElement returns the element handle, if n holds one.
func (n Node) AsElement() (*Element, bool) { return n.el, n.el != nil }

// AsText returns the text content, if n holds text.
func (n Node) AsText() (string, bool) {
	if n.el != nil {
		return "", false
	}
	return n.text, true
}

// DeepClone returns a deep copy of n: a new, unprotected element subtree for
// element nodes, or the node itself for text (strings are already immutable
// values in Go).
func (n Node) DeepClone() Node {
	if n.el != nil {
		return NewElementNode(n.el.DeepClone())
	}
	return n
}

// Children holds a node's ordered children plus an auxiliary index of where
// the element children sit within that order, so ElementView can offer
// O(1) access without a child-kind scan on every lookup.
type Children struct {
	all            []Node
	elementIndices []int
}

// Len returns the total number of child nodes (text and element alike).
func (c *Children) Len() int { return len(c.all) }

// IsEmpty reports whether c has no children at all.
func (c *Children) IsEmpty() bool { return len(c.all) == 0 }

// At returns the child at index i among all children, text and element
// alike.
func (c *Children) At(i int) (Node, bool) {
	if i < 0 || i >= len(c.all) {
		return Node{}, false
	}
	return c.all[i], true
}

// All returns the full, ordered child-node slice. Callers must not mutate it.
func (c *Children) All() []Node { return c.all }

func (c *Children) push(n Node) {
	if n.IsElement() {
		c.elementIndices = append(c.elementIndices, len(c.all))
	}
	c.all = append(c.all, n)
}

// ElementView returns the element-only view over c.
func (c *Children) ElementView() ElementView {
	return ElementView{all: c.all, indices: c.elementIndices}
}

// IterChildren returns the child elements in document order, skipping text.
func (c *Children) IterChildren() []*Element {
	els := make([]*Element, 0, len(c.elementIndices))
	for _, idx := range c.elementIndices {
		el, _ := c.all[idx].AsElement()
		els = append(els, el)
	}
	return els
}

// Equal compares two Children structurally: same node kinds and content in
// the same order, recursing into element equality and ignoring protected.
func (c *Children) Equal(o *Children) bool {
	if len(c.all) != len(o.all) {
		return false
	}
	for i := range c.all {
		a, b := c.all[i], o.all[i]
		if a.IsElement() != b.IsElement() {
			return false
		}
		if a.IsElement() {
			ae, _ := a.AsElement()
			be, _ := b.AsElement()
			if !ae.Equal(be) {
				return false
			}
			continue
		}
		at, _ := a.AsText()
		bt, _ := b.AsText()
		if at != bt {
			return false
		}
	}
	return true
}

// ElementView is a read-only, element-only window over a Children value:
// indices here are positions among element children only, but Index/Get can
// still report or resolve the underlying position among all children.
type ElementView struct {
	all     []Node
	indices []int
}

// Len returns the number of element children.
func (v ElementView) Len() int { return len(v.indices) }

// IsEmpty reports whether v has no element children.
func (v ElementView) IsEmpty() bool { return len(v.indices) == 0 }

// Index maps an element-only position back to its index among all children.
func (v ElementView) Index(i int) (int, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.indices[i], true
}

// Get returns the i-th element child.
func (v ElementView) Get(i int) (*Element, bool) {
	idx, ok := v.Index(i)
	if !ok {
		return nil, false
	}
	return v.all[idx].AsElement()
}
