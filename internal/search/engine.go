package search

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/alex-user-go/staysearch/internal/catalog"
	"github.com/alex-user-go/staysearch/internal/obs"
	"github.com/alex-user-go/staysearch/internal/search/cache"
)

// maxResults caps the rows emitted per search.
const maxResults = 10

// Row is one ranked result: the rank-th cheapest bookable property for a
// search. Ranks are 1-indexed within their search.
type Row struct {
	SearchID   string
	Rank       int
	PropertyID string
	TotalCost  int64
}

// Engine runs one batch: for every search it selects nearby candidates,
// prices each stay, and keeps the ten cheapest bookable results.
type Engine struct {
	index   *Index
	avail   catalog.Availability
	quotes  *cache.Cache
	workers int
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine over a built index and availability table.
// workers <= 0 means one worker per CPU.
func NewEngine(index *Index, avail catalog.Availability, workers int, metrics *obs.Metrics, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		index:   index,
		avail:   avail,
		quotes:  cache.New(),
		workers: workers,
		metrics: metrics,
		logger:  logger,
	}
}

// Run processes every search on the worker pool and returns the result
// rows grouped by input search order. Searches are independent: the index
// and availability table are read-only, and each worker writes only its
// own search's slot, so the output is deterministic for any worker count.
func (e *Engine) Run(ctx context.Context, searches []catalog.SearchRequest) ([]Row, error) {
	perSearch := make([][]Row, len(searches))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perSearch[i] = e.rankSearch(searches[i])
			}
		}()
	}

feed:
	for i := range searches {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}

	total := 0
	for _, rows := range perSearch {
		total += len(rows)
	}
	out := make([]Row, 0, total)
	for _, rows := range perSearch {
		out = append(out, rows...)
	}

	e.logger.Info("batch complete",
		"searches", len(searches),
		"result_rows", len(out),
		"quotes_cached", e.quotes.Len(),
	)

	return out, nil
}

// rankSearch produces the ranked rows for one search.
func (e *Engine) rankSearch(s catalog.SearchRequest) []Row {
	e.metrics.IncSearches()

	candidates := e.index.Select(s.Lat, s.Lng)
	e.metrics.AddCandidates(len(candidates))

	type quoted struct {
		propertyID string
		total      int64
	}

	priced := make([]quoted, 0, len(candidates))
	for _, p := range candidates {
		key := e.quotes.Key(p.ID, s.Checkin, s.Checkout)
		q, hit := e.quotes.GetOrCompute(key, func() cache.Quote {
			total, ok := PriceStay(p, e.avail, s.Checkin, s.Checkout)
			return cache.Quote{Total: total, Available: ok}
		})
		if hit {
			e.metrics.IncQuoteCacheHits()
		}

		if !q.Available {
			e.metrics.IncStaysUnavailable()
			continue
		}
		e.metrics.IncStaysPriced()
		priced = append(priced, quoted{propertyID: p.ID, total: q.Total})
	}

	// Equal costs tie-break by property ID, keeping the ranking fully
	// deterministic regardless of candidate discovery order.
	sort.Slice(priced, func(i, j int) bool {
		if priced[i].total != priced[j].total {
			return priced[i].total < priced[j].total
		}
		return priced[i].propertyID < priced[j].propertyID
	})

	if len(priced) > maxResults {
		priced = priced[:maxResults]
	}

	rows := make([]Row, 0, len(priced))
	for i, q := range priced {
		rows = append(rows, Row{
			SearchID:   s.ID,
			Rank:       i + 1,
			PropertyID: q.propertyID,
			TotalCost:  q.total,
		})
	}
	e.metrics.AddResultRows(len(rows))
	return rows
}
