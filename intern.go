package stanza

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultNamespacePoolMaxEntries mirrors the teacher ecosystem's
// SelectorCacheMaxEntries default knob: how many distinct namespace URIs an
// interning pool remembers before evicting the least recently used one.
const DefaultNamespacePoolMaxEntries = 50

// NamespacePool interns namespace URI strings so that repeated occurrences
// on the wire (every stanza in a session typically reuses a handful of
// namespace URIs) share one backing string rather than being reallocated per
// element. Grounded on antchfx-xmlquery/cache.go's getQuery, reusing the same
// sync.Once-initialized, mutex-guarded lru.Cache pattern.
type NamespacePool struct {
	once  sync.Once
	mu    sync.Mutex
	cache *lru.Cache

	maxEntries int
}

// NewNamespacePool creates a pool that remembers up to maxEntries distinct
// namespace URIs. A maxEntries <= 0 falls back to
// DefaultNamespacePoolMaxEntries.
func NewNamespacePool(maxEntries int) *NamespacePool {
	if maxEntries <= 0 {
		maxEntries = DefaultNamespacePoolMaxEntries
	}
	return &NamespacePool{maxEntries: maxEntries}
}

// Intern returns a *string for s, reusing a previously interned pointer for
// the same value when one is cached. A nil pool interns nothing and simply
// allocates.
func (p *NamespacePool) Intern(s string) *string {
	if p == nil {
		v := s
		return &v
	}
	p.once.Do(func() {
		p.cache = lru.New(p.maxEntries)
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.cache.Get(s); ok {
		return v.(*string)
	}
	ptr := new(string)
	*ptr = s
	p.cache.Add(s, ptr)
	return ptr
}
