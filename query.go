package stanza

import "strings"

// FindPath evaluates a small path-query language against root:
//
//	name            first child element named "name" in root's own namespace
//	{ns}name        first child element named "name" in namespace ns
//	name/rest       recurse "rest" starting from the "name" child
//	name#           the text content of the "name" child
//	@attr           the value of root's own "attr" attribute
//
// All failures (no such child, child has mixed content where text was
// requested, ...) collapse to (Node{}, false): there is no partial result or
// distinct error taxonomy here, matching fake_xpath.rs's Option-returning
// design.
func FindPath(root *Element, path string) (Node, bool) {
	var xmlns *string
	rest := path

	switch {
	case strings.HasPrefix(rest, "{"):
		if end := strings.IndexByte(rest, '}'); end >= 0 {
			ns := rest[1:end]
			xmlns = &ns
			rest = rest[end+1:]
		}
	case strings.HasPrefix(rest, "@"):
		v, ok := root.Attr[AttrName(rest[1:])]
		if !ok {
			return Node{}, false
		}
		return NewTextNode(v), true
	}

	var name, remainder string
	if idx := strings.IndexAny(rest, "#@/"); idx >= 0 {
		name = rest[:idx]
		if rest[idx] == '/' {
			remainder = rest[idx+1:]
		} else {
			// '#' and '@' are left in place for the next step to re-detect.
			remainder = rest[idx:]
		}
	} else {
		name, remainder = rest, ""
	}

	child := FindFirstChild(root, &name, xmlns)
	if child == nil {
		return Node{}, false
	}

	switch {
	case remainder == "#":
		t, ok := child.GetText()
		if !ok {
			return Node{}, false
		}
		return NewTextNode(t), true
	case remainder == "":
		return NewElementNode(child), true
	default:
		return FindPath(child, remainder)
	}
}
