package stanza

// XMLNSXMPPStanzas is the namespace URI carrying the standard XMPP stanza
// error condition/text elements.
const XMLNSXMPPStanzas = "urn:ietf:params:xml:ns:xmpp-stanzas"

// MakeReply builds a fresh, empty reply skeleton to st: id is copied as-is,
// from/to are swapped, and type is forced to "result" for an iq (replies to
// an iq must always report success or be built via MakeErrorReply) or
// copied through unchanged for any other stanza kind.
func MakeReply(st *Element) *Element {
	attr := make(map[AttrName]string)
	if v, ok := st.Attr["id"]; ok {
		attr["id"] = v
	}
	if v, ok := st.Attr["from"]; ok {
		attr["to"] = v
	}
	if v, ok := st.Attr["to"]; ok {
		attr["from"] = v
	}
	if st.LocalName == "iq" {
		attr["type"] = "result"
	} else if v, ok := st.Attr["type"]; ok {
		attr["type"] = v
	}
	return NewElement(nil, st.LocalName, attr)
}

// ElementSelector matches child elements by local name and/or namespace URI,
// precomputed once so FindFirstChild doesn't have to re-derive the match
// rule for every candidate.
type ElementSelector struct {
	filterByName     bool
	name             string
	matchXMLNS       bool
	allowAbsentXMLNS bool
	nsuri            *string
}

// SelectInsideXMLNS builds a selector for children of an element whose
// in-scope default namespace is defaultXMLNS (nil if none). name (nil to
// match any local name) and xmlns (nil to mean "defaultXMLNS, or no
// namespace if defaultXMLNS is also nil") follow the same shorthand
// original_source's find_first_child/fake_xpath give callers: omitting the
// namespace means "whatever this context's default namespace is."
func SelectInsideXMLNS(defaultXMLNS *string, name *string, xmlns *string) ElementSelector {
	sel := ElementSelector{}
	if name != nil {
		sel.filterByName = true
		sel.name = *name
	}
	switch {
	case xmlns != nil && defaultXMLNS != nil:
		sel.matchXMLNS = true
		sel.nsuri = xmlns
		sel.allowAbsentXMLNS = *defaultXMLNS == *xmlns
	case xmlns != nil:
		sel.matchXMLNS = true
		sel.nsuri = xmlns
		sel.allowAbsentXMLNS = false
	case defaultXMLNS != nil:
		sel.matchXMLNS = true
		sel.nsuri = defaultXMLNS
		sel.allowAbsentXMLNS = true
	default:
		sel.matchXMLNS = false
		sel.allowAbsentXMLNS = true
	}
	return sel
}

// SelectInsideParent is SelectInsideXMLNS using parent's own namespace as
// the default namespace context.
func SelectInsideParent(parent *Element, name *string, xmlns *string) ElementSelector {
	return SelectInsideXMLNS(parent.NSURI, name, xmlns)
}

// Select reports whether el matches the selector.
func (s ElementSelector) Select(el *Element) bool {
	return s.SelectStr(el.LocalName, el.NSURI)
}

// SelectStr is Select against a bare (name, namespace) pair, for callers
// that have not built an Element yet.
func (s ElementSelector) SelectStr(name string, xmlns *string) bool {
	if s.filterByName && name != s.name {
		return false
	}
	if xmlns != nil {
		return s.matchXMLNS && s.nsuri != nil && *s.nsuri == *xmlns
	}
	return s.allowAbsentXMLNS
}

// FindFirstChild returns the first element in children matching the
// selector, or nil.
func (s ElementSelector) FindFirstChild(children []*Element) *Element {
	for _, c := range children {
		if s.Select(c) {
			return c
		}
	}
	return nil
}

// FindFirstChild is the free-function form: look for the first child of
// parent matching name/xmlns, with xmlns defaulting to parent's own
// namespace the same way ElementSelector does.
func FindFirstChild(parent *Element, name *string, xmlns *string) *Element {
	sel := SelectInsideParent(parent, name, xmlns)
	return sel.FindFirstChild(parent.IterChildren())
}

// ErrorInfo is the parsed content of an XMPP <error/> element.
type ErrorInfo struct {
	Type      string
	Condition string
	Text      *string
	AppDef    *Element
}

// ExtractErrorInfo parses errEl (an <error/> element, xmlns not specified
// here — its own namespace is irrelevant, only its children's namespaces
// matter) into an ErrorInfo. It requires a "type" attribute; Condition
// defaults to "undefined-condition" if no condition child is present.
// Children without any namespace at all are ignored entirely (can't be
// reliably classified as condition, text, or application-defined content).
func ExtractErrorInfo(errEl *Element) (*ErrorInfo, bool) {
	typ, ok := errEl.Attr["type"]
	if !ok {
		return nil, false
	}
	info := &ErrorInfo{Type: typ, Condition: "undefined-condition"}
	for _, child := range errEl.IterChildren() {
		if child.NSURI == nil {
			continue
		}
		if *child.NSURI == XMLNSXMPPStanzas {
			if child.LocalName == "text" {
				if t, ok := child.GetText(); ok {
					info.Text = &t
				}
			} else {
				info.Condition = child.LocalName
			}
			continue
		}
		info.AppDef = child
	}
	return info, true
}

// ExtractError locates st's <error/> child (in whatever namespace is
// ambient for st) and parses it.
func ExtractError(st *Element) (*ErrorInfo, bool) {
	name := "error"
	errChild := FindFirstChild(st, &name, nil)
	if errChild == nil {
		return nil, false
	}
	return ExtractErrorInfo(errChild)
}

// MakeErrorReply builds an XMPP error reply to st: type/condition/text/by
// follow RFC 6120 §8.3. st itself must not already be of type "error".
func MakeErrorReply(st *Element, typ, condition string, text *string, by *string) (*Element, error) {
	if t, ok := st.Attr["type"]; ok && t == "error" {
		return nil, ErrReplyToError
	}
	reply := MakeReply(st)
	reply.Attr["type"] = "error"

	errEl := reply.Tag(nil, "error", nil)
	errEl.Attr["type"] = typ
	if by != nil {
		errEl.Attr["by"] = *by
	}

	ns := XMLNSXMPPStanzas
	errEl.Tag(&ns, condition, nil)
	if text != nil {
		textEl := errEl.Tag(&ns, "text", nil)
		textEl.Text(*text)
	}
	return reply, nil
}
