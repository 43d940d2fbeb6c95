package search_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/alex-user-go/staysearch/internal/catalog"
	"github.com/alex-user-go/staysearch/internal/obs"
	"github.com/alex-user-go/staysearch/internal/search"
)

func newEngine(t *testing.T, properties []catalog.Property, avail catalog.Availability, workers int) *search.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := search.NewIndex(properties, 1.0)
	return search.NewEngine(ix, avail, workers, obs.NewMetrics(), logger)
}

func TestEngine_Run_CheapestMatch(t *testing.T) {
	properties := []catalog.Property{
		{ID: "P1", Lat: 0.0, Lng: 0.0, NightlyPrice: 100},
		{ID: "P2", Lat: 5.0, Lng: 5.0, NightlyPrice: 50},
	}
	searches := []catalog.SearchRequest{
		{ID: "S1", Lat: 0.5, Lng: 0.5, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-03")},
	}

	e := newEngine(t, properties, catalog.Availability{}, 1)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []search.Row{
		{SearchID: "S1", Rank: 1, PropertyID: "P1", TotalCost: 200},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestEngine_Run_UnavailablePropertyExcluded(t *testing.T) {
	properties := []catalog.Property{
		{ID: "P1", Lat: 0.0, Lng: 0.0, NightlyPrice: 100},
	}
	avail := catalog.Availability{
		{PropertyID: "P1", Night: day(t, "2024-01-02")}: {Available: false},
	}
	searches := []catalog.SearchRequest{
		{ID: "S1", Lat: 0.0, Lng: 0.0, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-03")},
	}

	e := newEngine(t, properties, avail, 1)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for unavailable stay, got %+v", rows)
	}
}

func TestEngine_Run_EmptyCatalog(t *testing.T) {
	searches := []catalog.SearchRequest{
		{ID: "S1", Lat: 0.0, Lng: 0.0, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
	}

	e := newEngine(t, nil, catalog.Availability{}, 2)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows for empty catalog, got %+v", rows)
	}
}

func TestEngine_Run_TopTenOnly(t *testing.T) {
	var properties []catalog.Property
	for i := 0; i < 15; i++ {
		properties = append(properties, catalog.Property{
			ID:           fmt.Sprintf("P%02d", i),
			Lat:          0.01 * float64(i),
			Lng:          0.01 * float64(i),
			NightlyPrice: int64(100 + i),
		})
	}
	searches := []catalog.SearchRequest{
		{ID: "S1", Lat: 0.0, Lng: 0.0, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
	}

	e := newEngine(t, properties, catalog.Availability{}, 1)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Errorf("row %d: expected rank %d, got %d", i, i+1, r.Rank)
		}
		if i > 0 && rows[i-1].TotalCost > r.TotalCost {
			t.Errorf("rows not sorted by cost: %d before %d", rows[i-1].TotalCost, r.TotalCost)
		}
	}
	if rows[0].PropertyID != "P00" || rows[9].PropertyID != "P09" {
		t.Errorf("expected the ten cheapest, got first %s last %s", rows[0].PropertyID, rows[9].PropertyID)
	}
}

func TestEngine_Run_TieBreakByPropertyID(t *testing.T) {
	// Same coordinates and price: ranking falls back to property ID.
	properties := []catalog.Property{
		{ID: "Z", Lat: 0, Lng: 0, NightlyPrice: 100},
		{ID: "A", Lat: 0, Lng: 0, NightlyPrice: 100},
		{ID: "M", Lat: 0, Lng: 0, NightlyPrice: 100},
	}
	searches := []catalog.SearchRequest{
		{ID: "S1", Lat: 0, Lng: 0, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
	}

	e := newEngine(t, properties, catalog.Availability{}, 1)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, r := range rows {
		got = append(got, r.PropertyID)
	}
	want := []string{"A", "M", "Z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie-break order = %v, want %v", got, want)
	}
}

func TestEngine_Run_OutputGroupedByInputOrder(t *testing.T) {
	properties := []catalog.Property{
		{ID: "P1", Lat: 0, Lng: 0, NightlyPrice: 100},
		{ID: "P2", Lat: 10, Lng: 10, NightlyPrice: 50},
	}
	searches := []catalog.SearchRequest{
		{ID: "S-west", Lat: 0, Lng: 0, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
		{ID: "S-nowhere", Lat: -50, Lng: -50, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
		{ID: "S-east", Lat: 10, Lng: 10, Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02")},
	}

	e := newEngine(t, properties, catalog.Availability{}, 3)
	rows, err := e.Run(context.Background(), searches)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []search.Row{
		{SearchID: "S-west", Rank: 1, PropertyID: "P1", TotalCost: 100},
		{SearchID: "S-east", Rank: 1, PropertyID: "P2", TotalCost: 50},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestEngine_Run_DeterministicAcrossWorkerCounts(t *testing.T) {
	var properties []catalog.Property
	for i := 0; i < 60; i++ {
		properties = append(properties, catalog.Property{
			ID:           fmt.Sprintf("P%03d", i),
			Lat:          float64(i%10) * 0.1,
			Lng:          float64(i/10) * 0.1,
			NightlyPrice: int64(50 + i%7*10),
		})
	}
	var searches []catalog.SearchRequest
	for i := 0; i < 20; i++ {
		searches = append(searches, catalog.SearchRequest{
			ID:       fmt.Sprintf("S%02d", i),
			Lat:      float64(i%5) * 0.2,
			Lng:      float64(i%3) * 0.2,
			Checkin:  day(t, "2024-01-01"),
			Checkout: day(t, "2024-01-04"),
		})
	}

	var baseline []search.Row
	for _, workers := range []int{1, 2, 8} {
		e := newEngine(t, properties, catalog.Availability{}, workers)
		rows, err := e.Run(context.Background(), searches)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if baseline == nil {
			baseline = rows
			continue
		}
		if !reflect.DeepEqual(rows, baseline) {
			t.Errorf("workers=%d: output differs from single-worker run", workers)
		}
	}
}

func TestEngine_Run_ContextCancellation(t *testing.T) {
	properties := []catalog.Property{
		{ID: "P1", Lat: 0, Lng: 0, NightlyPrice: 100},
	}
	var searches []catalog.SearchRequest
	for i := 0; i < 100; i++ {
		searches = append(searches, catalog.SearchRequest{
			ID: fmt.Sprintf("S%d", i), Lat: 0, Lng: 0,
			Checkin: day(t, "2024-01-01"), Checkout: day(t, "2024-01-02"),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, properties, catalog.Availability{}, 2)
	if _, err := e.Run(ctx, searches); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}
