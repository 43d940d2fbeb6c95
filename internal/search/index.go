package search

import (
	"sort"

	"github.com/alex-user-go/staysearch/internal/catalog"
)

// DefaultRadius is the proximity window, in degrees, applied on each axis
// around a search's coordinates.
const DefaultRadius = 1.0

// Index answers proximity queries against a fixed catalog. It keeps the
// catalog sorted by latitude and by longitude so each query is two binary
// searches plus an intersection of the matching ranges.
//
// The proximity window is an axis-aligned bounding box with inclusive
// bounds, not a geodesic radius: a property qualifies iff its latitude lies
// in [lat-R, lat+R] and its longitude lies in [lng-R, lng+R].
type Index struct {
	byLat  []catalog.Property
	byLng  []catalog.Property
	radius float64
}

// NewIndex builds an Index over the given properties. The slices are built
// once and never mutated, so a single Index is safe for concurrent queries.
// A radius <= 0 falls back to DefaultRadius.
func NewIndex(properties []catalog.Property, radius float64) *Index {
	if radius <= 0 {
		radius = DefaultRadius
	}

	byLat := make([]catalog.Property, len(properties))
	copy(byLat, properties)
	sort.SliceStable(byLat, func(i, j int) bool {
		return byLat[i].Lat < byLat[j].Lat
	})

	byLng := make([]catalog.Property, len(properties))
	copy(byLng, properties)
	sort.SliceStable(byLng, func(i, j int) bool {
		return byLng[i].Lng < byLng[j].Lng
	})

	return &Index{
		byLat:  byLat,
		byLng:  byLng,
		radius: radius,
	}
}

// Select returns the properties inside the bounding box centered on the
// given coordinates. An empty catalog or coordinates far outside it yield
// an empty slice.
func (ix *Index) Select(lat, lng float64) []catalog.Property {
	latLo, latHi := boundRange(ix.byLat, lat-ix.radius, lat+ix.radius, latOf)
	lngLo, lngHi := boundRange(ix.byLng, lng-ix.radius, lng+ix.radius, lngOf)

	if latHi <= latLo || lngHi <= lngLo {
		return nil
	}

	// Intersect the two ranges: hash the IDs of the narrower one, then walk
	// the other keeping matches. Walk order is fixed by the sort, so the
	// result is deterministic for a given catalog.
	if latHi-latLo <= lngHi-lngLo {
		return intersect(ix.byLat[latLo:latHi], ix.byLng[lngLo:lngHi])
	}
	return intersect(ix.byLng[lngLo:lngHi], ix.byLat[latLo:latHi])
}

// boundRange binary-searches the half-open index range [lo, hi) of
// properties whose key lies in the inclusive interval [min, max].
func boundRange(sorted []catalog.Property, min, max float64, key func(catalog.Property) float64) (int, int) {
	lo := sort.Search(len(sorted), func(i int) bool { return key(sorted[i]) >= min })
	hi := sort.Search(len(sorted), func(i int) bool { return key(sorted[i]) > max })
	return lo, hi
}

func intersect(narrow, wide []catalog.Property) []catalog.Property {
	ids := make(map[string]struct{}, len(narrow))
	for _, p := range narrow {
		ids[p.ID] = struct{}{}
	}

	var out []catalog.Property
	for _, p := range wide {
		if _, ok := ids[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func latOf(p catalog.Property) float64 { return p.Lat }
func lngOf(p catalog.Property) float64 { return p.Lng }
