package cache_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alex-user-go/staysearch/internal/catalog"
	"github.com/alex-user-go/staysearch/internal/search/cache"
)

func TestCache_MissThenHit(t *testing.T) {
	c := cache.New()
	checkin, _ := catalog.ParseDay("2024-01-01")
	checkout, _ := catalog.ParseDay("2024-01-03")
	key := c.Key("P1", checkin, checkout)

	computes := 0
	compute := func() cache.Quote {
		computes++
		return cache.Quote{Total: 200, Available: true}
	}

	q, hit := c.GetOrCompute(key, compute)
	if hit {
		t.Error("first lookup should be a miss")
	}
	if q.Total != 200 || !q.Available {
		t.Errorf("unexpected quote %+v", q)
	}

	q, hit = c.GetOrCompute(key, compute)
	if !hit {
		t.Error("second lookup should be a hit")
	}
	if q.Total != 200 || !q.Available {
		t.Errorf("unexpected cached quote %+v", q)
	}
	if computes != 1 {
		t.Errorf("expected 1 compute, got %d", computes)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached quote, got %d", c.Len())
	}
}

func TestCache_UnavailableQuotesCached(t *testing.T) {
	c := cache.New()
	checkin, _ := catalog.ParseDay("2024-01-01")
	checkout, _ := catalog.ParseDay("2024-01-02")
	key := c.Key("P1", checkin, checkout)

	c.GetOrCompute(key, func() cache.Quote {
		return cache.Quote{Available: false}
	})

	q, hit := c.GetOrCompute(key, func() cache.Quote {
		t.Fatal("compute must not run for a cached rejection")
		return cache.Quote{}
	})
	if !hit {
		t.Error("expected hit for cached rejection")
	}
	if q.Available {
		t.Error("expected cached quote to remain unavailable")
	}
}

func TestCache_KeyDistinguishesRanges(t *testing.T) {
	c := cache.New()
	d1, _ := catalog.ParseDay("2024-01-01")
	d2, _ := catalog.ParseDay("2024-01-02")
	d3, _ := catalog.ParseDay("2024-01-03")

	keys := map[string]struct{}{
		c.Key("P1", d1, d2): {},
		c.Key("P1", d1, d3): {},
		c.Key("P1", d2, d3): {},
		c.Key("P2", d1, d2): {},
	}
	if len(keys) != 4 {
		t.Errorf("expected 4 distinct keys, got %d", len(keys))
	}
}

func TestCache_ConcurrentComputeCollapsed(t *testing.T) {
	c := cache.New()
	checkin, _ := catalog.ParseDay("2024-01-01")
	checkout, _ := catalog.ParseDay("2024-01-05")
	key := c.Key("P1", checkin, checkout)

	var computes atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.GetOrCompute(key, func() cache.Quote {
			computes.Add(1)
			close(started)
			<-release
			return cache.Quote{Total: 400, Available: true}
		})
	}()

	<-started
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, _ := c.GetOrCompute(key, func() cache.Quote {
				computes.Add(1)
				return cache.Quote{Total: -1}
			})
			if q.Total != 400 {
				t.Errorf("waiter got %+v, want the collapsed quote", q)
			}
		}()
	}

	close(release)
	wg.Wait()

	if got := computes.Load(); got != 1 {
		t.Errorf("expected 1 compute across concurrent callers, got %d", got)
	}
}
