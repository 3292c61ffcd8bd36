package stanza

import "strings"

// Element is a shared, mutable XML element node. Multiple variables may hold
// the same *Element; mutating through one is observable through all of them,
// the way original_source's Rc<RefCell<Element>> handles were shared. Go's
// plain pointer already gives that sharing for free, so there is no separate
// "ElementPtr" wrapper type here: *Element plays that role directly.
type Element struct {
	// NSURI is the element's namespace URI, or nil for none. It is expected
	// to come from a NamespacePool.Intern call when built from wire data.
	NSURI     *string
	LocalName string
	Attr      map[AttrName]string

	children  Children
	protected bool
}

// NewElement constructs a detached element. attr may be nil, in which case
// an empty map is allocated.
func NewElement(nsuri *string, local string, attr map[AttrName]string) *Element {
	if attr == nil {
		attr = make(map[AttrName]string)
	}
	return &Element{NSURI: nsuri, LocalName: local, Attr: attr}
}

// IsProtected reports whether e is protected against further mutation.
func (e *Element) IsProtected() bool { return e.protected }

// Len returns the number of child nodes (text and element alike).
func (e *Element) Len() int { return e.children.Len() }

// IsEmpty reports whether e has no children.
func (e *Element) IsEmpty() bool { return e.children.IsEmpty() }

// At returns the child at index i among all of e's children.
func (e *Element) At(i int) (Node, bool) { return e.children.At(i) }

// ElementView returns the element-only view over e's children.
func (e *Element) ElementView() ElementView { return e.children.ElementView() }

// IterChildren returns e's child elements in document order.
func (e *Element) IterChildren() []*Element { return e.children.IterChildren() }

// Tag appends a new child element and returns it. A nil nsuri inherits e's
// own namespace, matching the "tag shares parent's default namespace" rule
// used when building stanzas programmatically. The new child inherits e's
// protected flag (tag() cannot be used to smuggle a mutable node into a
// protected subtree); deep_clone, not tag, is how a protected subtree is
// reused starting unprotected.
func (e *Element) Tag(nsuri *string, local string, attr map[AttrName]string) *Element {
	if nsuri == nil {
		nsuri = e.NSURI
	}
	child := NewElement(nsuri, local, attr)
	child.protected = e.protected
	e.children.push(NewElementNode(child))
	return child
}

// Text appends a text child. The cursor (see Stanza) never descends into
// text nodes.
func (e *Element) Text(s string) {
	e.children.push(NewTextNode(s))
}

// Push appends an arbitrary Node, enforcing the protected flag and, for
// element nodes, the cycle-safety invariant: inserting el into e must not
// make e reachable from el.
func (e *Element) Push(n Node) error {
	if e.protected {
		return ErrProtected
	}
	if el, ok := n.AsElement(); ok {
		if err := e.checkInsert(el); err != nil {
			return err
		}
	}
	e.children.push(n)
	return nil
}

// checkInsert reports whether inserting candidate as a child of e is safe:
// candidate must not be e itself, and e must not already be reachable from
// within candidate's own subtree (which would create a cycle once the edge
// e -> candidate exists). Protected candidates are exempt, the same way
// original_source's check_insert short-circuits on a protected element
// (protected subtrees are documented to be cycle-free and shared, so no scan
// is needed). A DFS that revisits the same element is treated as
// conservative evidence of a pre-existing cycle, mirroring the "element
// cannot be borrowed" signal the Rc<RefCell<>> original used for the same
// purpose.
func (e *Element) checkInsert(candidate *Element) error {
	if candidate == e {
		return ErrNodeIsSelf
	}
	if candidate.protected {
		return nil
	}
	visited := make(map[*Element]bool)
	var scan func(*Element) error
	scan = func(el *Element) error {
		if visited[el] {
			return ErrLoopDetected
		}
		visited[el] = true
		if el == e {
			return ErrLoopDetected
		}
		for _, child := range el.IterChildren() {
			if err := scan(child); err != nil {
				return err
			}
		}
		return nil
	}
	return scan(candidate)
}

// MapFunc transforms a child element in place: returning the same pointer
// keeps it, returning a different element substitutes it (re-checked for
// cycle safety unless it is the same pointer), and returning nil drops it.
// A non-nil error aborts the whole MapElements call, wrapped in
// ExternalError.
type MapFunc func(*Element) (*Element, error)

// MapElements rebuilds e's children by running f over each child element in
// place, leaving text children untouched. e must not be protected.
func (e *Element) MapElements(f MapFunc) error {
	if e.protected {
		return ErrProtected
	}
	var next Children
	for _, n := range e.children.All() {
		el, ok := n.AsElement()
		if !ok {
			next.push(n)
			continue
		}
		newEl, err := f(el)
		if err != nil {
			return &ExternalError{Err: err}
		}
		if newEl == nil {
			continue
		}
		if newEl != el {
			if cerr := e.checkInsert(newEl); cerr != nil {
				return cerr
			}
		}
		next.push(NewElementNode(newEl))
	}
	e.children = next
	return nil
}

// Protect recursively and idempotently marks e and its entire subtree as
// protected. Once protected, an element can never again be pushed into,
// mapped, or (directly) mutated-into-a-cycle, but it may still be shared as
// a child of any number of other elements.
func (e *Element) Protect() {
	if e.protected {
		return
	}
	for _, child := range e.IterChildren() {
		child.Protect()
	}
	e.protected = true
}

// GetText returns the concatenation of e's text children, or ("", false) if
// e has any element children at all.
func (e *Element) GetText() (string, bool) {
	if !e.children.ElementView().IsEmpty() {
		return "", false
	}
	var sb strings.Builder
	for _, n := range e.children.All() {
		t, _ := n.AsText()
		sb.WriteString(t)
	}
	return sb.String(), true
}

// DeepClone returns a fully independent copy of e's subtree, unprotected
// regardless of e's own protected flag.
func (e *Element) DeepClone() *Element {
	attrCopy := make(map[AttrName]string, len(e.Attr))
	for k, v := range e.Attr {
		attrCopy[k] = v
	}
	clone := NewElement(e.NSURI, e.LocalName, attrCopy)
	for _, n := range e.children.All() {
		clone.children.push(n.DeepClone())
	}
	return clone
}

// Equal reports structural equality: same local name, attributes and
// children, recursively. protected is not compared, and — matching
// original_source/src/stanza/tree.rs's own PartialEq impl exactly — neither
// is NSURI (see DESIGN.md for why this is intentional rather than an
// oversight).
func (e *Element) Equal(o *Element) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.LocalName != o.LocalName {
		return false
	}
	if len(e.Attr) != len(o.Attr) {
		return false
	}
	for k, v := range e.Attr {
		if ov, ok := o.Attr[k]; !ok || ov != v {
			return false
		}
	}
	return e.children.Equal(&o.children)
}
