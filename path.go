package stanza

// ElementPath is a sequence of child indices identifying a position within
// an element tree, rooted wherever DerefOn is later applied.
type ElementPath struct {
	indices []int
}

// NewElementPath returns an empty (root) path.
func NewElementPath() *ElementPath { return &ElementPath{} }

// DerefOn resolves p against root, descending one index at a time. It fails
// if any step lands on a text node or an out-of-range index.
func (p *ElementPath) DerefOn(root *Element) (*Element, bool) {
	curr := root
	for _, idx := range p.indices {
		n, ok := curr.At(idx)
		if !ok {
			return nil, false
		}
		el, ok := n.AsElement()
		if !ok {
			return nil, false
		}
		curr = el
	}
	return curr, true
}

// Down descends into child index i.
func (p *ElementPath) Down(i int) { p.indices = append(p.indices, i) }

// Up discards the last index, a no-op at the root.
func (p *ElementPath) Up() {
	if len(p.indices) == 0 {
		return
	}
	p.indices = p.indices[:len(p.indices)-1]
}

// Reset returns the path to the root.
func (p *ElementPath) Reset() { p.indices = p.indices[:0] }

// Depth returns how many steps deep p currently is.
func (p *ElementPath) Depth() int { return len(p.indices) }

// Clone returns an independent copy of p.
func (p *ElementPath) Clone() *ElementPath {
	c := make([]int, len(p.indices))
	copy(c, p.indices)
	return &ElementPath{indices: c}
}

// Stanza pairs a root element with a cursor into it, so a stream parser (or
// any other incremental builder) can append nested content without holding
// an explicit stack of element handles.
type Stanza struct {
	root   *Element
	cursor *ElementPath
}

// NewStanza builds a fresh root element and wraps it as a Stanza at the top.
func NewStanza(nsuri *string, local string, attr map[AttrName]string) *Stanza {
	return WrapStanza(NewElement(nsuri, local, attr))
}

// WrapStanza wraps an existing element as a Stanza, cursor at the top.
func WrapStanza(root *Element) *Stanza {
	return &Stanza{root: root, cursor: NewElementPath()}
}

// Root returns the stanza's root element.
func (s *Stanza) Root() *Element { return s.root }

// TryDeref resolves the cursor against the root.
func (s *Stanza) TryDeref() (*Element, bool) { return s.cursor.DerefOn(s.root) }

// IsAtTop reports whether the cursor is at the root.
func (s *Stanza) IsAtTop() bool { return s.cursor.Depth() == 0 }

// Tag appends a new child element under the element the cursor currently
// points at, then descends the cursor into it. The new child's index is
// computed before it is created, so Up() later returns the cursor to
// exactly this parent. Returns nil if the cursor itself no longer resolves
// (should not happen in ordinary use).
func (s *Stanza) Tag(nsuri *string, local string, attr map[AttrName]string) *Element {
	parent, ok := s.cursor.DerefOn(s.root)
	if !ok {
		return nil
	}
	newIndex := parent.Len()
	s.cursor.Down(newIndex)
	return parent.Tag(nsuri, local, attr)
}

// Text appends a text child under the element the cursor currently points
// at. The cursor does not move: text nodes are leaves, never addressable by
// the path-index cursor.
func (s *Stanza) Text(data string) bool {
	parent, ok := s.cursor.DerefOn(s.root)
	if !ok {
		return false
	}
	parent.Text(data)
	return true
}

// Down moves the cursor into child index i of the current element.
func (s *Stanza) Down(i int) { s.cursor.Down(i) }

// Up moves the cursor back up to its parent.
func (s *Stanza) Up() { s.cursor.Up() }

// Reset moves the cursor back to the root.
func (s *Stanza) Reset() { s.cursor.Reset() }

// DeepClone returns an independent stanza with a deep copy of the root,
// cursor reset to the top.
func (s *Stanza) DeepClone() *Stanza { return WrapStanza(s.root.DeepClone()) }

// Equal compares two stanzas by their root elements' structural equality.
func (s *Stanza) Equal(o *Stanza) bool { return s.root.Equal(o.root) }
