package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alex-user-go/staysearch/internal/catalog"
)

// Section header lines in the reference stream format.
const (
	sectionProperties = "Properties"
	sectionDates      = "Dates"
	sectionSearches   = "Searches"
)

// SectionSource reads the reference stream format: a header line naming a
// section (Properties, Dates, Searches) followed by one CSV record per
// line. Blank lines are skipped; sections may appear in any order.
type SectionSource struct {
	r io.Reader
}

// NewSectionSource creates a SectionSource reading from r.
func NewSectionSource(r io.Reader) *SectionSource {
	return &SectionSource{r: r}
}

// Load parses the stream into a Dataset, failing on the first malformed
// record with its line number.
func (s *SectionSource) Load(ctx context.Context) (*catalog.Dataset, error) {
	b := newBuilder()

	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	section := ""
	lineNo := 0
	for sc.Scan() {
		if err := context.Cause(ctx); err != nil {
			return nil, err
		}
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch line {
		case sectionProperties, sectionDates, sectionSearches:
			section = line
			continue
		}

		fields := strings.Split(line, ",")
		var err error
		switch section {
		case sectionProperties:
			err = parsePropertyRecord(b, fields)
		case sectionDates:
			err = parseDateRecord(b, fields)
		case sectionSearches:
			err = parseSearchRecord(b, fields)
		default:
			err = fmt.Errorf("%w: record before any section header", ErrMalformedInput)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return b.dataset(), nil
}

// parsePropertyRecord parses `property_id,lat,lng,nightly_price`.
func parsePropertyRecord(b *builder, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("%w: property record needs 4 fields, got %d", ErrMalformedInput, len(fields))
	}

	lat, err := parseCoordinate("lat", fields[1])
	if err != nil {
		return err
	}
	lng, err := parseCoordinate("lng", fields[2])
	if err != nil {
		return err
	}
	price, err := parsePrice("nightly_price", fields[3])
	if err != nil {
		return err
	}

	return b.addProperty(catalog.Property{
		ID:           strings.TrimSpace(fields[0]),
		Lat:          lat,
		Lng:          lng,
		NightlyPrice: price,
	})
}

// parseDateRecord parses `property_id,date,availability,price`. The
// availability flag is converted to a bool at this boundary; it is never
// carried, or compared, as text.
func parseDateRecord(b *builder, fields []string) error {
	if len(fields) != 4 {
		return fmt.Errorf("%w: date record needs 4 fields, got %d", ErrMalformedInput, len(fields))
	}

	night, err := catalog.ParseDay(strings.TrimSpace(fields[1]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	flag, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return fmt.Errorf("%w: invalid availability flag %q", ErrMalformedInput, fields[2])
	}
	price, err := parsePrice("price", fields[3])
	if err != nil {
		return err
	}

	return b.addNight(strings.TrimSpace(fields[0]), night, flag != 0, price)
}

// parseSearchRecord parses `search_id,lat,lng,checkin,checkout`.
func parseSearchRecord(b *builder, fields []string) error {
	if len(fields) != 5 {
		return fmt.Errorf("%w: search record needs 5 fields, got %d", ErrMalformedInput, len(fields))
	}

	lat, err := parseCoordinate("lat", fields[1])
	if err != nil {
		return err
	}
	lng, err := parseCoordinate("lng", fields[2])
	if err != nil {
		return err
	}
	checkin, err := catalog.ParseDay(strings.TrimSpace(fields[3]))
	if err != nil {
		return fmt.Errorf("%w: checkin: %v", ErrMalformedInput, err)
	}
	checkout, err := catalog.ParseDay(strings.TrimSpace(fields[4]))
	if err != nil {
		return fmt.Errorf("%w: checkout: %v", ErrMalformedInput, err)
	}

	return b.addSearch(catalog.SearchRequest{
		ID:       strings.TrimSpace(fields[0]),
		Lat:      lat,
		Lng:      lng,
		Checkin:  checkin,
		Checkout: checkout,
	})
}

func parseCoordinate(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedInput, name, s)
	}
	return v, nil
}

func parsePrice(name, s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedInput, name, s)
	}
	return v, nil
}
