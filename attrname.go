package stanza

import (
	"errors"
	"strings"
)

// XMLNamespaceXML is the namespace URI implicitly bound to the "xml:" prefix
// by the XML specification itself (no declaration required).
const XMLNamespaceXML = "http://www.w3.org/XML/1998/namespace"

const attrNameDelim = '\x01'

// xmlNamespacePrefix is the composed-storage-form prefix shared by every
// xml:-namespaced attribute, e.g. "xml:lang" is stored as
// xmlNamespacePrefix+"lang".
const xmlNamespacePrefix = XMLNamespaceXML + string(attrNameDelim)

// AttrName is an attribute key that may carry an optional namespace URI,
// stored internally as "<nsuri>\x01<local>" (or just "<local>" when there is
// no namespace). Byte-wise string comparison already gives the right
// equality and ordering, so no custom Hash/Eq/Ord is needed the way Rust's
// SmartString wrapper required.
type AttrName string

// XMLLangAttrName is the AttrName under which "xml:lang" is stored and
// retrieved, so callers never have to spell out the composed form by hand.
const XMLLangAttrName AttrName = "xml:lang"

// ErrEmptyLocalName is returned by ParseAttrName/ComposeAttrName-adjacent
// parsing when a namespaced form has no local part after the separator.
var ErrEmptyLocalName = errors.New("stanza: attribute name has no local part")

// ComposeAttrName builds the internal storage form for a namespace URI
// (nil for none) and a local name. The local name is not validated here;
// validate it first with Classify(KindAttributeName, ...) if it did not
// already come from ParseAttrName.
func ComposeAttrName(nsuri *string, local string) AttrName {
	if nsuri == nil {
		return AttrName(local)
	}
	return AttrName(*nsuri + string(attrNameDelim) + local)
}

// ParseAttrName parses the user-facing spellings of an attribute name:
// "local", "xml:local" (the predeclared XML namespace), "xmlns:prefix"
// (kept verbatim, namespace declarations are not namespaced themselves),
// or the composed "<nsuri>\x01<local>" storage form.
func ParseAttrName(s string) (AttrName, error) {
	switch {
	case strings.HasPrefix(s, "xml:"):
		local := s[len("xml:"):]
		if _, err := Classify(KindAttributeName, []byte(local)); err != nil {
			return "", err
		}
		return AttrName(xmlNamespacePrefix + local), nil

	case strings.HasPrefix(s, "xmlns:"):
		local := s[len("xmlns:"):]
		if _, err := Classify(KindAttributeName, []byte(local)); err != nil {
			return "", err
		}
		return AttrName(s), nil

	default:
		if idx := strings.IndexByte(s, attrNameDelim); idx >= 0 {
			nsuri, local := s[:idx], s[idx+1:]
			if len(local) == 0 {
				return "", ErrEmptyLocalName
			}
			if _, err := Classify(KindCharData, []byte(nsuri)); err != nil {
				return "", err
			}
			if _, err := Classify(KindAttributeName, []byte(local)); err != nil {
				return "", err
			}
			return AttrName(s), nil
		}
		if _, err := Classify(KindAttributeName, []byte(s)); err != nil {
			return "", err
		}
		return AttrName(s), nil
	}
}

// Decompose splits an AttrName back into its optional namespace URI and
// local name.
func (a AttrName) Decompose() (nsuri *string, local string) {
	s := string(a)
	if idx := strings.IndexByte(s, attrNameDelim); idx >= 0 {
		ns := s[:idx]
		return &ns, s[idx+1:]
	}
	return nil, s
}

func (a AttrName) String() string { return string(a) }
