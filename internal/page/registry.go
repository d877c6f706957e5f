package page

import (
	"github.com/couchcryptid/volunteer-map-page/internal/lru"
	"github.com/couchcryptid/volunteer-map-page/internal/observability"
)

// Registry keeps recent page loads addressable by id so the registration
// form's callback can reach its page. It is a bounded LRU; an evicted page is
// closed, which cancels its pending map commit.
type Registry struct {
	pages   *lru.Cache[string, *Shell]
	metrics *observability.Metrics
}

// NewRegistry creates a registry holding at most maxEntries pages.
func NewRegistry(maxEntries int, metrics *observability.Metrics) *Registry {
	return &Registry{
		pages:   lru.New(maxEntries, func(_ string, s *Shell) { s.Close() }),
		metrics: metrics,
	}
}

// Get returns the page with the given id and marks it recently used.
func (r *Registry) Get(id string) (*Shell, bool) {
	return r.pages.Get(id)
}

// Put stores a page, evicting and closing the least recently used one when
// the registry is full. A different page stored under the same id is closed.
func (r *Registry) Put(s *Shell) {
	if prev, replaced := r.pages.Add(s.ID(), s); replaced && prev != s {
		prev.Close()
	}
	r.metrics.PagesActive.Set(float64(r.pages.Len()))
}

// Len returns the number of pages held.
func (r *Registry) Len() int { return r.pages.Len() }

// CloseAll closes and drops every page.
func (r *Registry) CloseAll() {
	r.pages.Purge()
	r.metrics.PagesActive.Set(0)
}
