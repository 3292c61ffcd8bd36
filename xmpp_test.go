package stanza

import "testing"

// =============================================================================
// MAKE REPLY
// =============================================================================

func TestMakeReplySwapsFromTo(t *testing.T) {
	st := NewElement(nil, "message", map[AttrName]string{
		"from": "a@example.com",
		"to":   "b@example.com",
		"id":   "1",
	})
	reply := MakeReply(st)
	if reply.Attr["from"] != "b@example.com" {
		t.Errorf("expected from %q, got %q", "b@example.com", reply.Attr["from"])
	}
	if reply.Attr["to"] != "a@example.com" {
		t.Errorf("expected to %q, got %q", "a@example.com", reply.Attr["to"])
	}
	if reply.Attr["id"] != "1" {
		t.Errorf("expected id to be copied, got %q", reply.Attr["id"])
	}
}

func TestMakeReplyForcesIQTypeResult(t *testing.T) {
	st := NewElement(nil, "iq", map[AttrName]string{"type": "get"})
	reply := MakeReply(st)
	if reply.Attr["type"] != "result" {
		t.Errorf("expected iq reply type %q, got %q", "result", reply.Attr["type"])
	}
}

func TestMakeReplyCopiesTypeForNonIQ(t *testing.T) {
	st := NewElement(nil, "presence", map[AttrName]string{"type": "unavailable"})
	reply := MakeReply(st)
	if reply.Attr["type"] != "unavailable" {
		t.Errorf("expected type to be copied through, got %q", reply.Attr["type"])
	}
}

func TestMakeReplyOmitsAbsentAttributes(t *testing.T) {
	st := NewElement(nil, "message", nil)
	reply := MakeReply(st)
	if _, ok := reply.Attr["id"]; ok {
		t.Error("expected no id attribute when the original had none")
	}
	if _, ok := reply.Attr["from"]; ok {
		t.Error("expected no from attribute when the original had no to")
	}
}

// =============================================================================
// FIND FIRST CHILD / SELECTORS
// =============================================================================

func TestFindFirstChildByNameDefaultsToParentNamespace(t *testing.T) {
	ns := "jabber:client"
	parent := NewElement(&ns, "message", nil)
	body := parent.Tag(nil, "body", nil)
	name := "body"
	found := FindFirstChild(parent, &name, nil)
	if found != body {
		t.Fatalf("expected to find the body child, got %v", found)
	}
}

func TestFindFirstChildRespectsExplicitNamespace(t *testing.T) {
	ns := "jabber:client"
	other := "urn:xmpp:ping"
	parent := NewElement(&ns, "iq", nil)
	parent.Tag(nil, "ping", nil)
	pingNS := parent.Tag(&other, "ping", nil)

	name := "ping"
	found := FindFirstChild(parent, &name, &other)
	if found != pingNS {
		t.Fatalf("expected the explicitly-namespaced child, got %v", found)
	}
}

func TestFindFirstChildReturnsNilWhenAbsent(t *testing.T) {
	parent := NewElement(nil, "iq", nil)
	name := "ping"
	if found := FindFirstChild(parent, &name, nil); found != nil {
		t.Fatalf("expected nil, got %v", found)
	}
}

// =============================================================================
// ERROR EXTRACTION
// =============================================================================

func TestExtractErrorInfoRequiresTypeAttribute(t *testing.T) {
	errEl := NewElement(nil, "error", nil)
	if _, ok := ExtractErrorInfo(errEl); ok {
		t.Fatal("expected ExtractErrorInfo to fail without a type attribute")
	}
}

func TestExtractErrorInfoDefaultsConditionWhenAbsent(t *testing.T) {
	errEl := NewElement(nil, "error", map[AttrName]string{"type": "cancel"})
	info, ok := ExtractErrorInfo(errEl)
	if !ok {
		t.Fatal("expected ExtractErrorInfo to succeed")
	}
	if info.Condition != "undefined-condition" {
		t.Errorf("expected default condition, got %q", info.Condition)
	}
}

func TestExtractErrorInfoParsesConditionAndText(t *testing.T) {
	errEl := NewElement(nil, "error", map[AttrName]string{"type": "modify"})
	ns := XMLNSXMPPStanzas
	errEl.Tag(&ns, "bad-request", nil)
	textEl := errEl.Tag(&ns, "text", nil)
	textEl.Text("malformed stanza")

	info, ok := ExtractErrorInfo(errEl)
	if !ok {
		t.Fatal("expected ExtractErrorInfo to succeed")
	}
	if info.Condition != "bad-request" {
		t.Errorf("expected condition %q, got %q", "bad-request", info.Condition)
	}
	if info.Text == nil || *info.Text != "malformed stanza" {
		t.Errorf("expected text %q, got %v", "malformed stanza", info.Text)
	}
}

func TestExtractErrorInfoSkipsChildrenWithNoNamespace(t *testing.T) {
	errEl := NewElement(nil, "error", map[AttrName]string{"type": "cancel"})
	errEl.Tag(nil, "stray", nil)
	info, ok := ExtractErrorInfo(errEl)
	if !ok {
		t.Fatal("expected ExtractErrorInfo to succeed")
	}
	if info.Condition != "undefined-condition" {
		t.Errorf("expected the namespace-less child to be ignored, got condition %q", info.Condition)
	}
	if info.AppDef != nil {
		t.Error("expected a namespace-less child to not be classified as AppDef")
	}
}

func TestExtractErrorInfoCapturesAppDefinedCondition(t *testing.T) {
	errEl := NewElement(nil, "error", map[AttrName]string{"type": "modify"})
	appNS := "urn:example:custom"
	app := errEl.Tag(&appNS, "custom-condition", nil)

	info, ok := ExtractErrorInfo(errEl)
	if !ok {
		t.Fatal("expected ExtractErrorInfo to succeed")
	}
	if info.AppDef != app {
		t.Errorf("expected AppDef to be the app-specific child, got %v", info.AppDef)
	}
}

func TestExtractErrorFindsErrorChildOfStanza(t *testing.T) {
	st := NewElement(nil, "iq", map[AttrName]string{"type": "error"})
	errEl := st.Tag(nil, "error", map[AttrName]string{"type": "cancel"})
	ns := XMLNSXMPPStanzas
	errEl.Tag(&ns, "item-not-found", nil)

	info, ok := ExtractError(st)
	if !ok {
		t.Fatal("expected ExtractError to succeed")
	}
	if info.Condition != "item-not-found" {
		t.Errorf("expected condition %q, got %q", "item-not-found", info.Condition)
	}
}

// =============================================================================
// MAKE ERROR REPLY
// =============================================================================

func TestMakeErrorReplyRejectsAlreadyErrorStanza(t *testing.T) {
	st := NewElement(nil, "iq", map[AttrName]string{"type": "error"})
	_, err := MakeErrorReply(st, "cancel", "item-not-found", nil, nil)
	if err != ErrReplyToError {
		t.Fatalf("expected ErrReplyToError, got %v", err)
	}
}

func TestMakeErrorReplyBuildsCorrectStructure(t *testing.T) {
	st := NewElement(nil, "iq", map[AttrName]string{
		"type": "get",
		"from": "a@example.com",
		"to":   "b@example.com",
		"id":   "42",
	})
	text := "no such item"
	by := "b@example.com"
	reply, err := MakeErrorReply(st, "cancel", "item-not-found", &text, &by)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Attr["type"] != "error" {
		t.Fatalf("expected reply type %q, got %q", "error", reply.Attr["type"])
	}
	if reply.Attr["id"] != "42" {
		t.Errorf("expected id copied through, got %q", reply.Attr["id"])
	}

	errName := "error"
	errEl := FindFirstChild(reply, &errName, nil)
	if errEl == nil {
		t.Fatal("expected an <error/> child")
	}
	if errEl.Attr["type"] != "cancel" {
		t.Errorf("expected error type %q, got %q", "cancel", errEl.Attr["type"])
	}
	if errEl.Attr["by"] != by {
		t.Errorf("expected by %q, got %q", by, errEl.Attr["by"])
	}

	info, ok := ExtractErrorInfo(errEl)
	if !ok {
		t.Fatal("expected the built error element to parse")
	}
	if info.Condition != "item-not-found" {
		t.Errorf("expected condition %q, got %q", "item-not-found", info.Condition)
	}
	if info.Text == nil || *info.Text != text {
		t.Errorf("expected text %q, got %v", text, info.Text)
	}
}

func TestMakeErrorReplyOmitsTextAndByWhenNil(t *testing.T) {
	st := NewElement(nil, "iq", map[AttrName]string{"type": "get"})
	reply, err := MakeErrorReply(st, "cancel", "item-not-found", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	errName := "error"
	errEl := FindFirstChild(reply, &errName, nil)
	if _, ok := errEl.Attr["by"]; ok {
		t.Error("expected no by attribute")
	}
	info, _ := ExtractErrorInfo(errEl)
	if info.Text != nil {
		t.Error("expected no text element")
	}
}
