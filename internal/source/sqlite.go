package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/alex-user-go/staysearch/internal/catalog"
)

// SQLiteSource loads a dataset from a SQLite database holding the three
// reference tables:
//
//	properties(property_id TEXT, lat REAL, lng REAL, nightly_price INTEGER)
//	property_dates(property_id TEXT, date TEXT, availability INTEGER, price INTEGER)
//	searches(search_id TEXT, lat REAL, lng REAL, checkin TEXT, checkout TEXT)
//
// Dates are YYYY-MM-DD text. Rows load in rowid order so the dataset
// preserves insertion order like the stream format preserves line order.
type SQLiteSource struct {
	path string
}

// NewSQLiteSource creates a SQLiteSource reading the database at path.
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

// Load reads all three tables into a Dataset, failing on the first
// malformed row.
func (s *SQLiteSource) Load(ctx context.Context) (*catalog.Dataset, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", s.path, err)
	}
	defer func() {
		_ = db.Close()
	}()

	b := newBuilder()

	if err := s.loadProperties(ctx, db, b); err != nil {
		return nil, err
	}
	if err := s.loadDates(ctx, db, b); err != nil {
		return nil, err
	}
	if err := s.loadSearches(ctx, db, b); err != nil {
		return nil, err
	}

	return b.dataset(), nil
}

func (s *SQLiteSource) loadProperties(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT property_id, lat, lng, nightly_price FROM properties ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p catalog.Property
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lng, &p.NightlyPrice); err != nil {
			return fmt.Errorf("scanning property row: %w", err)
		}
		if err := b.addProperty(p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading properties: %w", err)
	}
	return nil
}

func (s *SQLiteSource) loadDates(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT property_id, date, availability, price FROM property_dates ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("querying property_dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			propertyID string
			date       string
			flag       int64
			price      int64
		)
		if err := rows.Scan(&propertyID, &date, &flag, &price); err != nil {
			return fmt.Errorf("scanning date row: %w", err)
		}
		night, err := catalog.ParseDay(date)
		if err != nil {
			return fmt.Errorf("%w: property %q: %v", ErrMalformedInput, propertyID, err)
		}
		if err := b.addNight(propertyID, night, flag != 0, price); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading property_dates: %w", err)
	}
	return nil
}

func (s *SQLiteSource) loadSearches(ctx context.Context, db *sql.DB, b *builder) error {
	rows, err := db.QueryContext(ctx, `SELECT search_id, lat, lng, checkin, checkout FROM searches ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			req      catalog.SearchRequest
			checkin  string
			checkout string
		)
		if err := rows.Scan(&req.ID, &req.Lat, &req.Lng, &checkin, &checkout); err != nil {
			return fmt.Errorf("scanning search row: %w", err)
		}
		if req.Checkin, err = catalog.ParseDay(checkin); err != nil {
			return fmt.Errorf("%w: search %q: checkin: %v", ErrMalformedInput, req.ID, err)
		}
		if req.Checkout, err = catalog.ParseDay(checkout); err != nil {
			return fmt.Errorf("%w: search %q: checkout: %v", ErrMalformedInput, req.ID, err)
		}
		if err := b.addSearch(req); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading searches: %w", err)
	}
	return nil
}
