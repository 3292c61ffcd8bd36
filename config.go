package stanza

// StreamConfig parameterizes a Stream: which namespace/local names make up
// its header and stanza-level error element, and the optional guard rails
// (stanza size limit, namespace interning pool) around it.
type StreamConfig struct {
	StreamNamespace  string
	DefaultNamespace string
	StreamLocalName  string
	ErrorLocalName   string
	StanzaLimit      *int
	Pool             *NamespacePool
}

// StreamOption mutates a StreamConfig being built by NewStreamConfig,
// following the functional-options idiom (see DESIGN.md for why this
// replaces the teacher's positional constructor arguments).
type StreamOption func(*StreamConfig)

// WithStreamNamespace overrides the namespace URI expected on the opening
// element. Default: "http://etherx.jabber.org/streams".
func WithStreamNamespace(ns string) StreamOption {
	return func(c *StreamConfig) { c.StreamNamespace = ns }
}

// WithStreamLocalName overrides the local name expected on the opening
// element. Default: "stream".
func WithStreamLocalName(name string) StreamOption {
	return func(c *StreamConfig) { c.StreamLocalName = name }
}

// WithErrorLocalName overrides the local name that, combined with
// StreamNamespace, identifies a top-level child as a stream-level error
// rather than an ordinary stanza. Default: "error".
func WithErrorLocalName(name string) StreamOption {
	return func(c *StreamConfig) { c.ErrorLocalName = name }
}

// WithStanzaLimit bounds the number of bytes a single in-flight stanza (plus
// any stream-level bytes waiting ahead of the next complete event) may
// occupy before the stream poisons itself with ErrStanzaLimitExceeded.
func WithStanzaLimit(n int) StreamOption {
	return func(c *StreamConfig) { c.StanzaLimit = &n }
}

// WithNamespacePool sets the interning pool used for namespace URIs the
// stream observes on the wire.
func WithNamespacePool(p *NamespacePool) StreamOption {
	return func(c *StreamConfig) { c.Pool = p }
}

// NewStreamConfig builds a StreamConfig for a given default namespace (e.g.
// "jabber:client" or "jabber:server"), applying opts on top of the c2s-style
// defaults.
func NewStreamConfig(defaultNamespace string, opts ...StreamOption) StreamConfig {
	cfg := StreamConfig{
		StreamNamespace:  "http://etherx.jabber.org/streams",
		DefaultNamespace: defaultNamespace,
		StreamLocalName:  "stream",
		ErrorLocalName:   "error",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// C2SConfig is NewStreamConfig preset for client-to-server streams.
func C2SConfig(opts ...StreamOption) StreamConfig {
	return NewStreamConfig("jabber:client", opts...)
}

// S2SConfig is NewStreamConfig preset for server-to-server streams.
func S2SConfig(opts ...StreamOption) StreamConfig {
	return NewStreamConfig("jabber:server", opts...)
}
