package catalog

// Property represents one rentable property in the catalog.
type Property struct {
	ID           string
	Lat          float64
	Lng          float64
	NightlyPrice int64
}

// NightKey identifies one property-night in the availability index.
type NightKey struct {
	PropertyID string
	Night      Day
}

// Night holds the availability flag and override price for one
// property-night. The override price replaces the property's default
// nightly price whenever a record exists.
type Night struct {
	Available bool
	Price     int64
}

// Availability maps property-nights to their records. A missing key means
// the night is bookable at the property's default nightly price.
type Availability map[NightKey]Night

// SearchRequest represents one availability search. Checkout is exclusive:
// the stay covers every night from Checkin up to, but not including,
// Checkout. Checkin == Checkout is a valid zero-night stay.
type SearchRequest struct {
	ID       string
	Lat      float64
	Lng      float64
	Checkin  Day
	Checkout Day
}

// Nights returns the number of nights in the stay.
func (s SearchRequest) Nights() int {
	return int(s.Checkout - s.Checkin)
}

// Dataset bundles everything one batch run consumes. Properties and
// Searches preserve input order; all collections are read-only once loaded.
type Dataset struct {
	Properties   []Property
	Availability Availability
	Searches     []SearchRequest
}
