package stanza

import (
	"strconv"
	"strings"
	"unicode"
)

// EscapeText writes s to sb with the five XML predefined entities applied;
// nothing else is escaped or expanded.
func EscapeText(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString("&quot;")
		case '\'':
			sb.WriteString("&apos;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteRune(r)
		}
	}
}

func attrEscapeValue(sb *strings.Builder, val string) {
	sb.WriteByte('\'')
	EscapeText(sb, val)
	sb.WriteByte('\'')
}

// attrEscape writes one " name='value'" pair. name may carry a composed
// "<nsuri>\x01<local>" namespace, in which case a synthetic
// "prosody-tmp-nsN" prefix is declared and used for it — serialization does
// not try to reuse or invent a meaningful prefix, matching the storage
// format's own indifference to prefixes.
func attrEscape(sb *strings.Builder, name string, val string, nsid *int) {
	xmlns, local := "", name
	hasNS := false
	if idx := strings.IndexByte(name, attrNameDelim); idx >= 0 {
		xmlns, local, hasNS = name[:idx], name[idx+1:], true
	}
	if hasNS {
		prefix := "prosody-tmp-ns" + strconv.Itoa(*nsid)
		*nsid++
		sb.WriteString(" xmlns:")
		sb.WriteString(prefix)
		sb.WriteByte('=')
		attrEscapeValue(sb, xmlns)
		sb.WriteByte(' ')
		sb.WriteString(prefix)
		sb.WriteByte(':')
		sb.WriteString(local)
		sb.WriteByte('=')
	} else {
		sb.WriteByte(' ')
		sb.WriteString(local)
		sb.WriteByte('=')
	}
	attrEscapeValue(sb, val)
}

// HeadAsString renders only el's opening tag (never its children or closing
// tag), e.g. for logging or building a stream header by hand.
func HeadAsString(el *Element) string {
	var sb strings.Builder
	nsid := 0
	sb.WriteByte('<')
	sb.WriteString(el.LocalName)
	if el.NSURI != nil {
		attrEscape(&sb, "xmlns", *el.NSURI, &nsid)
	}
	for k, v := range el.Attr {
		attrEscape(&sb, string(k), v, &nsid)
	}
	sb.WriteByte('>')
	return sb.String()
}

// Formatter renders a full element subtree. Indent is nil for compact
// (single-line) output, or a non-nil indent unit (which may itself be "")
// for indented, multi-line output.
type Formatter struct {
	Indent       *string
	InitialLevel int
}

type formatterState struct {
	f        *Formatter
	depth    int
	newline  string
	parentNS *string
}

func newFormatterState(f *Formatter) *formatterState {
	level := f.InitialLevel
	if level <= 1 {
		level = 0
	} else {
		level--
	}
	var newline string
	if f.Indent != nil {
		newline = "\n" + strings.Repeat(*f.Indent, level)
	} else {
		newline = "\n"
	}
	return &formatterState{f: f, newline: newline}
}

func (s *formatterState) writeIndent(sb *strings.Builder, indent string) {
	sb.WriteString(s.newline)
	sb.WriteString(strings.Repeat(indent, s.depth))
}

func sameNS(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func (s *formatterState) formatNode(n Node, sb *strings.Builder) {
	if el, ok := n.AsElement(); ok {
		s.formatEl(el, sb)
		return
	}
	t, _ := n.AsText()
	EscapeText(sb, t)
}

func (s *formatterState) formatEl(el *Element, sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(el.LocalName)

	nsid := 0
	var assumedNS *string
	if !sameNS(s.parentNS, el.NSURI) {
		switch {
		case el.NSURI != nil:
			attrEscape(sb, "xmlns", *el.NSURI, &nsid)
			assumedNS = el.NSURI
		case s.parentNS != nil:
			// Reuse the parent's namespace as the physical xmlns here:
			// consumers of this wire format don't distinguish "inherited
			// default" from "explicitly declared", so there is nothing
			// gained by omitting it.
			attrEscape(sb, "xmlns", *s.parentNS, &nsid)
			assumedNS = s.parentNS
		default:
			assumedNS = nil
		}
	} else {
		assumedNS = el.NSURI
	}

	for k, v := range el.Attr {
		attrEscape(sb, string(k), v, &nsid)
	}

	if el.Len() == 0 {
		sb.WriteString("/>")
		return
	}

	if s.f.Indent != nil {
		sb.WriteByte('>')
		if el.Len() == 1 && el.ElementView().IsEmpty() {
			n, _ := el.At(0)
			t, _ := n.AsText()
			EscapeText(sb, t)
		} else {
			s.depth++
			for _, child := range el.children.All() {
				s.parentNS = assumedNS
				if t, ok := child.AsText(); ok {
					if strings.TrimFunc(t, unicode.IsSpace) == "" {
						continue
					}
				}
				s.writeIndent(sb, *s.f.Indent)
				s.formatNode(child, sb)
			}
			s.depth--
			s.writeIndent(sb, *s.f.Indent)
		}
	} else {
		sb.WriteByte('>')
		for _, child := range el.children.All() {
			s.parentNS = assumedNS
			s.formatNode(child, sb)
		}
	}

	sb.WriteString("</")
	sb.WriteString(el.LocalName)
	sb.WriteByte('>')
}

// FormatInto renders el into sb.
func (f *Formatter) FormatInto(el *Element, sb *strings.Builder) {
	st := newFormatterState(f)
	st.formatEl(el, sb)
}

// Format renders el to a string.
func (f *Formatter) Format(el *Element) string {
	var sb strings.Builder
	f.FormatInto(el, &sb)
	return sb.String()
}
