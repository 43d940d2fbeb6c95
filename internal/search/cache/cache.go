package cache

import (
	"fmt"
	"sync"

	"github.com/alex-user-go/staysearch/internal/catalog"
)

// Quote is a computed stay price. Available distinguishes a priced stay
// (including a free one) from a vetoed one.
type Quote struct {
	Total     int64
	Available bool
}

// Cache memoizes stay quotes for one batch run. Searches that share a date
// range hit the same key for a given property, so no stay is priced twice.
// Concurrent computations of the same key are collapsed: one worker prices,
// the rest wait for its result.
type Cache struct {
	mu       sync.Mutex
	quotes   map[string]Quote
	inflight map[string]*inflightQuote
}

type inflightQuote struct {
	done  chan struct{}
	quote Quote
}

// New creates an empty quote cache.
func New() *Cache {
	return &Cache{
		quotes:   make(map[string]Quote),
		inflight: make(map[string]*inflightQuote),
	}
}

// Key builds the cache key for one property and date range.
func (c *Cache) Key(propertyID string, checkin, checkout catalog.Day) string {
	return fmt.Sprintf("%s:%d:%d", propertyID, checkin, checkout)
}

// GetOrCompute returns the cached quote for key, or runs compute and caches
// its result. The second return reports whether the quote came from the
// cache (a hit). Concurrent callers with the same key share one compute.
func (c *Cache) GetOrCompute(key string, compute func() Quote) (Quote, bool) {
	c.mu.Lock()

	if q, ok := c.quotes[key]; ok {
		c.mu.Unlock()
		return q, true
	}

	if in, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-in.done
		return in.quote, true
	}

	in := &inflightQuote{done: make(chan struct{})}
	c.inflight[key] = in
	c.mu.Unlock()

	// Compute outside of the lock
	q := compute()

	c.mu.Lock()
	in.quote = q
	c.quotes[key] = q
	delete(c.inflight, key)
	c.mu.Unlock()

	close(in.done)

	return q, false
}

// Len reports the number of cached quotes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quotes)
}
