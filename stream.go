package stanza

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stanzacore/xmppstream/internal/lowxml"
)

// XMLNSStreams is the namespace URI of the stream header element itself
// ("stream" in "<stream:stream>").
const XMLNSStreams = "http://etherx.jabber.org/streams"

// StreamEvent is the sum type Stream.Read produces: an OpenedEvent, a
// StanzaEvent, a StreamErrorEvent, or a ClosedEvent.
type StreamEvent interface {
	isStreamEvent()
}

// OpenedEvent reports the stream header's own attributes once it has been
// fully read.
type OpenedEvent struct {
	ID      *string
	From    *string
	To      *string
	Lang    *string
	Version *string
}

func (OpenedEvent) isStreamEvent() {}

// StanzaEvent carries one complete top-level stanza.
type StanzaEvent struct{ Stanza *Stanza }

func (StanzaEvent) isStreamEvent() {}

// StreamErrorEvent carries a top-level child that matched the configured
// stream-error element (namespace + local name), rather than an ordinary
// stanza.
type StreamErrorEvent struct{ Stanza *Stanza }

func (StreamErrorEvent) isStreamEvent() {}

// ClosedEvent reports that the stream's closing tag was read.
type ClosedEvent struct{}

func (ClosedEvent) isStreamEvent() {}

// Stream is a byte-fed, single-threaded, cooperative XMPP stream parser. No
// method may be called concurrently with another call on the same Stream.
type Stream struct {
	cfg StreamConfig
	low *lowxml.Reader

	isOpen bool
	stanza *Stanza

	stanzaSize       int
	pendingBytes     int
	nonStreamNSDepth int
	nsStack          []map[string]string
	nameStack        []string
	// nsDepthPushed parallels nameStack/nsStack: records, per open element,
	// whether opening it incremented nonStreamNSDepth, so closing it knows
	// whether to decrement. A flat counter alone can't tell which of its
	// increments belongs to which closing tag.
	nsDepthPushed []bool

	err error
}

// NewStream creates a Stream from cfg.
func NewStream(cfg StreamConfig) *Stream {
	return &Stream{cfg: cfg, low: lowxml.NewReader()}
}

// Config returns the configuration this stream was built with.
func (s *Stream) Config() StreamConfig { return s.cfg }

// PendingBytes returns the number of fed-but-not-yet-retired bytes: the
// in-progress stanza's accumulated size plus bytes still buffered in the
// tokenizer. Stream-level events retire their bytes as soon as they are read,
// and a stanza's bytes are retired when the stanza is emitted.
func (s *Stream) PendingBytes() int { return s.pendingBytes }

// ReleaseTemporaries hints that the caller no longer needs previously
// consumed bytes kept around for replay; the underlying tokenizer may
// compact its buffer.
func (s *Stream) ReleaseTemporaries() { s.low.ReleaseTemporaries() }

// Feed appends wire bytes. If a stanza size limit is configured and feeding
// data would exceed it, the stream poisons itself and the poison error is
// returned (and will be returned again from any later Feed/Read).
func (s *Stream) Feed(data []byte) error {
	if s.err != nil {
		return s.err
	}
	newPending := s.pendingBytes + len(data)
	if s.cfg.StanzaLimit != nil && newPending > *s.cfg.StanzaLimit {
		return s.poison(ErrStanzaLimitExceeded)
	}
	s.pendingBytes = newPending
	s.low.Feed(data)
	return nil
}

// Read returns the next event once a complete one is available. It returns
// ErrWouldBlock (not a poisoning error) when more bytes are needed, returns
// the same poison error value on every call after any other error, and
// returns ErrStreamClosed on every call after the ClosedEvent.
func (s *Stream) Read() (StreamEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		ev, err := s.low.Next()
		if err != nil {
			if errors.Is(err, lowxml.ErrWouldBlock) {
				if s.cfg.StanzaLimit != nil && s.pendingBytes >= *s.cfg.StanzaLimit {
					return nil, s.poison(ErrStanzaLimitExceeded)
				}
				return nil, ErrWouldBlock
			}
			return nil, s.poison(&ParserError{Err: err})
		}
		result, procErr := s.procEvent(ev)
		if procErr != nil {
			return nil, s.poison(procErr)
		}
		if result.event != nil {
			return result.event, nil
		}
	}
}

func (s *Stream) poison(err error) error {
	s.err = err
	s.pendingBytes = 0
	s.low.Discard()
	return err
}

func (s *Stream) accountStreamLevel(n int) {
	s.pendingBytes = saturatingSub(s.pendingBytes, n)
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

func isXMPPWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

type procResult struct {
	event StreamEvent
}

func (s *Stream) procEvent(ev lowxml.Event) (procResult, error) {
	switch ev.Type {
	case lowxml.EventXMLDecl:
		s.accountStreamLevel(ev.Length)
		return procResult{}, nil

	case lowxml.EventComment:
		if s.stanza != nil {
			s.stanzaSize += ev.Length
		} else {
			s.accountStreamLevel(ev.Length)
		}
		return procResult{}, nil

	case lowxml.EventStartElement:
		if !s.isOpen {
			return s.procStreamHeader(ev)
		}
		return s.procStartElement(ev)

	case lowxml.EventText:
		return s.procText(ev)

	case lowxml.EventEndElement:
		qname := ev.Local
		if ev.Prefix != "" {
			qname = ev.Prefix + ":" + ev.Local
		}
		return s.finishElement(ev.Length, qname)
	}
	return procResult{}, nil
}

func (s *Stream) procText(ev lowxml.Event) (procResult, error) {
	if s.stanza == nil {
		s.accountStreamLevel(ev.Length)
		if strings.TrimFunc(ev.Text, isXMPPWhitespace) != "" {
			return procResult{}, ErrTextAtStreamLevel
		}
		s.low.ReleaseTemporaries()
		return procResult{}, nil
	}
	if _, err := Classify(KindCharData, []byte(ev.Text)); err != nil {
		return procResult{}, &ParserError{Err: err}
	}
	s.stanzaSize += ev.Length
	el, ok := s.stanza.TryDeref()
	if !ok {
		return procResult{}, &ParserError{Err: fmt.Errorf("cursor out of range")}
	}
	el.Text(ev.Text)
	return procResult{}, nil
}

func resolveElementNS(frame map[string]string, prefix string) string {
	return frame[prefix]
}

func splitAttrName(name string) (prefix, local string) {
	return lowxml.SplitQName(name)
}

func (s *Stream) intern(v string) *string {
	if s.cfg.Pool != nil {
		return s.cfg.Pool.Intern(v)
	}
	c := v
	return &c
}

// extractNSDecls splits raw attrs into namespace declarations (xmlns,
// xmlns:prefix) and everything else, the way
// wilkmaciej-xml-streamer/parser.go's extractNamespaces does.
func extractNSDecls(attrs []lowxml.RawAttr) (decls map[string]string, rest []lowxml.RawAttr) {
	for _, a := range attrs {
		switch {
		case a.Name == "xmlns":
			if decls == nil {
				decls = map[string]string{}
			}
			decls[""] = a.Value
		case strings.HasPrefix(a.Name, "xmlns:"):
			if decls == nil {
				decls = map[string]string{}
			}
			decls[a.Name[len("xmlns:"):]] = a.Value
		default:
			rest = append(rest, a)
		}
	}
	return decls, rest
}

func (s *Stream) procStreamHeader(ev lowxml.Event) (procResult, error) {
	attrs, err := lowxml.ParseAttrs(ev.RawAttrs)
	if err != nil {
		return procResult{}, &ParserError{Err: err}
	}
	decls, rest := extractNSDecls(attrs)
	frame := decls
	if frame == nil {
		frame = map[string]string{}
	}

	if _, err := Classify(KindElementName, []byte(ev.Local)); err != nil {
		return procResult{}, &ParserError{Err: err}
	}
	nsURI := resolveElementNS(frame, ev.Prefix)
	if nsURI != s.cfg.StreamNamespace || ev.Local != s.cfg.StreamLocalName {
		return procResult{}, ErrInvalidStreamHeader
	}

	var id, from, to, lang, version *string
	for _, a := range rest {
		prefix, local := splitAttrName(a.Name)
		v := a.Value
		switch {
		case prefix == "" && local == "id":
			id = &v
		case prefix == "xml" && local == "lang":
			lang = &v
		case prefix == "" && local == "from":
			from = &v
		case prefix == "" && local == "to":
			to = &v
		case prefix == "" && local == "version":
			version = &v
		default:
			return procResult{}, ErrInvalidStreamHeader
		}
	}

	s.nsStack = append(s.nsStack, frame)
	qname := ev.Local
	if ev.Prefix != "" {
		qname = ev.Prefix + ":" + ev.Local
	}
	s.nameStack = append(s.nameStack, qname)
	s.nsDepthPushed = append(s.nsDepthPushed, false)
	s.isOpen = true
	s.accountStreamLevel(ev.Length)
	s.low.ReleaseTemporaries()

	return procResult{event: OpenedEvent{ID: id, From: from, To: to, Lang: lang, Version: version}}, nil
}

func (s *Stream) procStartElement(ev lowxml.Event) (procResult, error) {
	attrs, err := lowxml.ParseAttrs(ev.RawAttrs)
	if err != nil {
		return procResult{}, &ParserError{Err: err}
	}
	if _, err := Classify(KindElementName, []byte(ev.Local)); err != nil {
		return procResult{}, &ParserError{Err: err}
	}

	decls, rest := extractNSDecls(attrs)
	parentFrame := s.nsStack[len(s.nsStack)-1]
	var frame map[string]string
	if decls != nil {
		frame = make(map[string]string, len(parentFrame)+len(decls))
		for k, v := range parentFrame {
			frame[k] = v
		}
		for k, v := range decls {
			frame[k] = v
		}
	} else {
		frame = parentFrame
	}

	rawNSURI := resolveElementNS(frame, ev.Prefix)
	hasNS := rawNSURI != ""

	convertedAttrs := make(map[AttrName]string, len(rest))
	for _, a := range rest {
		prefix, local := splitAttrName(a.Name)
		if _, err := Classify(KindAttributeName, []byte(local)); err != nil {
			return procResult{}, &ParserError{Err: err}
		}
		var key AttrName
		switch prefix {
		case "xml":
			key = AttrName("xml:" + local)
		case "":
			key = AttrName(local)
		default:
			ns := frame[prefix]
			key = ComposeAttrName(s.intern(ns), local)
		}
		convertedAttrs[key] = a.Value
	}

	// Namespace-stripping: only namespaces other than this stream's default
	// namespace (or ones nested under such a foreign namespace) are stored
	// explicitly; everything else is implied by the stream's own default
	// and left off the tree, the way the protocol's own client/server
	// framing already determines it.
	var storedNS *string
	pushedDepth := false
	if hasNS && (rawNSURI != s.cfg.DefaultNamespace || s.nonStreamNSDepth > 0) {
		s.nonStreamNSDepth++
		pushedDepth = true
		storedNS = s.intern(rawNSURI)
	}

	s.nsStack = append(s.nsStack, frame)
	qname := ev.Local
	if ev.Prefix != "" {
		qname = ev.Prefix + ":" + ev.Local
	}
	s.nameStack = append(s.nameStack, qname)
	s.nsDepthPushed = append(s.nsDepthPushed, pushedDepth)

	if s.stanza != nil {
		s.stanzaSize += ev.Length
		child := s.stanza.Tag(storedNS, ev.Local, convertedAttrs)
		if child == nil {
			return procResult{}, &ParserError{Err: fmt.Errorf("cursor out of range")}
		}
		// Element.Tag fills a nil nsuri in from the parent; keep exactly the
		// namespace resolved above instead.
		child.NSURI = storedNS
	} else {
		root := NewElement(storedNS, ev.Local, convertedAttrs)
		s.stanza = WrapStanza(root)
		s.stanzaSize = ev.Length
	}

	if ev.SelfClosing {
		return s.finishElement(0, "")
	}
	return procResult{}, nil
}

// finishElement handles an EndElement (closeName set, from a real end tag)
// or the synthetic close implied by a self-closing start tag (closeName
// "").
func (s *Stream) finishElement(length int, closeName string) (procResult, error) {
	if len(s.nameStack) == 0 {
		return procResult{}, ErrInvalidTopLevelElement
	}
	top := s.nameStack[len(s.nameStack)-1]
	if closeName != "" && closeName != top {
		return procResult{}, &ParserError{Err: fmt.Errorf("mismatched end tag: expected </%s>, got </%s>", top, closeName)}
	}
	s.nameStack = s.nameStack[:len(s.nameStack)-1]
	s.nsStack = s.nsStack[:len(s.nsStack)-1]
	pushedDepth := s.nsDepthPushed[len(s.nsDepthPushed)-1]
	s.nsDepthPushed = s.nsDepthPushed[:len(s.nsDepthPushed)-1]

	if s.stanza == nil {
		s.accountStreamLevel(length)
		s.isOpen = false
		s.err = ErrStreamClosed
		return procResult{event: ClosedEvent{}}, nil
	}

	s.stanzaSize += length
	if pushedDepth {
		s.nonStreamNSDepth = saturatingSub(s.nonStreamNSDepth, 1)
	}

	if s.stanza.IsAtTop() {
		st := s.stanza
		s.stanza = nil
		s.accountStreamLevel(s.stanzaSize)
		root := st.Root()
		var out StreamEvent
		if root.LocalName == s.cfg.ErrorLocalName && root.NSURI != nil && *root.NSURI == s.cfg.StreamNamespace {
			out = StreamErrorEvent{Stanza: st}
		} else {
			out = StanzaEvent{Stanza: st}
		}
		s.low.ReleaseTemporaries()
		return procResult{event: out}, nil
	}

	s.stanza.Up()
	return procResult{}, nil
}

// ErrInvalidTopLevelElement is a poisoning error: an end tag was seen with
// nothing open to close.
var ErrInvalidTopLevelElement = errors.New("stanza: unmatched end tag")
