package stanza

import (
	"strings"
	"testing"
)

// =============================================================================
// TEXT ESCAPING
// =============================================================================

func escaped(s string) string {
	var sb strings.Builder
	EscapeText(&sb, s)
	return sb.String()
}

func TestEscapeTextPlainTextUnchanged(t *testing.T) {
	if got := escaped("hello world"); got != "hello world" {
		t.Errorf("expected unchanged text, got %q", got)
	}
}

func TestEscapeTextAmpersand(t *testing.T) {
	if got := escaped("Q&A"); got != "Q&amp;A" {
		t.Errorf("expected %q, got %q", "Q&amp;A", got)
	}
}

func TestEscapeTextLtGt(t *testing.T) {
	if got := escaped("a < b > c"); got != "a &lt; b &gt; c" {
		t.Errorf("expected angle brackets escaped, got %q", got)
	}
}

func TestEscapeTextQuoteAndApos(t *testing.T) {
	if got := escaped(`"it's"`); got != "&quot;it&apos;s&quot;" {
		t.Errorf("expected %q, got %q", "&quot;it&apos;s&quot;", got)
	}
}

func TestEscapeTextAposAtStart(t *testing.T) {
	if got := escaped("'leading"); got != "&apos;leading" {
		t.Errorf("expected %q, got %q", "&apos;leading", got)
	}
}

func TestEscapeTextAposAtEnd(t *testing.T) {
	if got := escaped("trailing'"); got != "trailing&apos;" {
		t.Errorf("expected %q, got %q", "trailing&apos;", got)
	}
}

func TestEscapeTextDoubleApos(t *testing.T) {
	if got := escaped("''"); got != "&apos;&apos;" {
		t.Errorf("expected %q, got %q", "&apos;&apos;", got)
	}
}

// =============================================================================
// COMPACT FORMATTING
// =============================================================================

func compactFormat(el *Element) string {
	f := &Formatter{}
	return f.Format(el)
}

func TestFormatSelfClosingEmptyElement(t *testing.T) {
	el := NewElement(nil, "presence", nil)
	if got := compactFormat(el); got != "<presence/>" {
		t.Errorf("expected %q, got %q", "<presence/>", got)
	}
}

func TestFormatEscapesAttributeValues(t *testing.T) {
	el := NewElement(nil, "item", map[AttrName]string{"name": `a"b`})
	got := compactFormat(el)
	if !strings.Contains(got, "&quot;") {
		t.Errorf("expected attribute value to be escaped, got %q", got)
	}
}

func TestFormatWritesDefaultNamespace(t *testing.T) {
	ns := "jabber:client"
	el := NewElement(&ns, "message", nil)
	got := compactFormat(el)
	if !strings.Contains(got, `xmlns='jabber:client'`) {
		t.Errorf("expected an xmlns declaration, got %q", got)
	}
}

func TestFormatChildInheritsParentNamespaceWithoutRedeclaring(t *testing.T) {
	ns := "jabber:client"
	el := NewElement(&ns, "message", nil)
	el.Tag(nil, "body", nil) // nil: inherits parent's own namespace
	got := compactFormat(el)
	if strings.Count(got, "xmlns=") != 1 {
		t.Errorf("expected only one xmlns declaration (on the parent), got %q", got)
	}
}

func TestFormatChildWithForeignNamespaceDeclaresIt(t *testing.T) {
	ns := "jabber:client"
	other := "urn:xmpp:ping"
	el := NewElement(&ns, "iq", nil)
	el.Tag(&other, "ping", nil)
	got := compactFormat(el)
	if !strings.Contains(got, "urn:xmpp:ping") {
		t.Errorf("expected the foreign namespace URI to appear, got %q", got)
	}
}

func TestFormatNamespacedAttributeGetsSyntheticPrefix(t *testing.T) {
	ns := "urn:example"
	attr := ComposeAttrName(&ns, "flag")
	el := NewElement(nil, "item", map[AttrName]string{attr: "1"})
	got := compactFormat(el)
	if !strings.Contains(got, "prosody-tmp-ns0") {
		t.Errorf("expected a synthetic prosody-tmp-ns prefix, got %q", got)
	}
}

func TestHeadAsStringRendersOnlyOpeningTag(t *testing.T) {
	el := NewElement(nil, "message", nil)
	el.Text("hello")
	got := HeadAsString(el)
	if strings.Contains(got, "hello") || strings.Contains(got, "</message>") {
		t.Errorf("expected only the opening tag, got %q", got)
	}
	if got != "<message>" {
		t.Errorf("expected %q, got %q", "<message>", got)
	}
}

// =============================================================================
// INDENTED FORMATTING
// =============================================================================

func TestFormatIndentedSingleTextChildInline(t *testing.T) {
	el := NewElement(nil, "body", nil)
	el.Text("hello")
	indent := "  "
	f := &Formatter{Indent: &indent}
	got := f.Format(el)
	if got != "<body>hello</body>" {
		t.Errorf("expected the single text child inlined, got %q", got)
	}
}

func TestFormatIndentedSkipsWhitespaceOnlyChildren(t *testing.T) {
	el := NewElement(nil, "message", nil)
	el.Text("   \n  ")
	el.Tag(nil, "body", nil)
	indent := "  "
	f := &Formatter{Indent: &indent}
	got := f.Format(el)
	if strings.Count(got, "<body") != 1 {
		t.Errorf("expected exactly one body element, got %q", got)
	}
	// the whitespace-only run should not appear as stray literal text between tags
	if strings.Contains(got, ">   \n") {
		t.Errorf("expected whitespace-only text child to be skipped, got %q", got)
	}
}

func TestFormatIndentedMultipleElementChildrenOnOwnLines(t *testing.T) {
	el := NewElement(nil, "query", nil)
	el.Tag(nil, "item", nil)
	el.Tag(nil, "item", nil)
	indent := "  "
	f := &Formatter{Indent: &indent}
	got := f.Format(el)
	if strings.Count(got, "\n") < 2 {
		t.Errorf("expected multiple element children to be newline-separated, got %q", got)
	}
}
