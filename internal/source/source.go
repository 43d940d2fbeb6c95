package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/alex-user-go/staysearch/internal/catalog"
)

// ErrMalformedInput marks dataset loading failures. The whole batch is
// rejected on the first bad record; a partial catalog would silently change
// answers.
var ErrMalformedInput = errors.New("malformed input")

// Source loads one dataset for a batch run.
type Source interface {
	Load(ctx context.Context) (*catalog.Dataset, error)
}

// builder accumulates validated records into a Dataset. All Sources feed
// typed values through it so validation lives in one place.
type builder struct {
	properties []catalog.Property
	propIDs    map[string]struct{}
	avail      catalog.Availability
	searches   []catalog.SearchRequest
	searchIDs  map[string]struct{}
}

func newBuilder() *builder {
	return &builder{
		propIDs:   make(map[string]struct{}),
		avail:     make(catalog.Availability),
		searchIDs: make(map[string]struct{}),
	}
}

func (b *builder) addProperty(p catalog.Property) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty property id", ErrMalformedInput)
	}
	if _, ok := b.propIDs[p.ID]; ok {
		return fmt.Errorf("%w: duplicate property id %q", ErrMalformedInput, p.ID)
	}
	if p.NightlyPrice < 0 {
		return fmt.Errorf("%w: property %q: negative nightly price %d", ErrMalformedInput, p.ID, p.NightlyPrice)
	}
	b.propIDs[p.ID] = struct{}{}
	b.properties = append(b.properties, p)
	return nil
}

func (b *builder) addNight(propertyID string, night catalog.Day, available bool, price int64) error {
	if propertyID == "" {
		return fmt.Errorf("%w: empty property id in date record", ErrMalformedInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: property %q, night %s: negative price %d", ErrMalformedInput, propertyID, night, price)
	}
	key := catalog.NightKey{PropertyID: propertyID, Night: night}
	if _, ok := b.avail[key]; ok {
		return fmt.Errorf("%w: duplicate date record for property %q, night %s", ErrMalformedInput, propertyID, night)
	}
	b.avail[key] = catalog.Night{Available: available, Price: price}
	return nil
}

func (b *builder) addSearch(s catalog.SearchRequest) error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty search id", ErrMalformedInput)
	}
	if _, ok := b.searchIDs[s.ID]; ok {
		return fmt.Errorf("%w: duplicate search id %q", ErrMalformedInput, s.ID)
	}
	// Equal checkin/checkout is a valid zero-night stay; a reversed range
	// is rejected here so the pricer never sees one.
	if s.Checkout < s.Checkin {
		return fmt.Errorf("%w: search %q: checkout %s before checkin %s", ErrMalformedInput, s.ID, s.Checkout, s.Checkin)
	}
	b.searchIDs[s.ID] = struct{}{}
	b.searches = append(b.searches, s)
	return nil
}

func (b *builder) dataset() *catalog.Dataset {
	return &catalog.Dataset{
		Properties:   b.properties,
		Availability: b.avail,
		Searches:     b.searches,
	}
}
