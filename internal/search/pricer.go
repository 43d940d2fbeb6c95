package search

import "github.com/alex-user-go/staysearch/internal/catalog"

// PriceStay computes the total cost of staying at the property from checkin
// (inclusive) to checkout (exclusive). For each night, a missing
// availability record means the night is bookable at the property's default
// nightly price; an existing record either vetoes the whole stay (the
// second return is false) or contributes its override price.
//
// A zero-night stay (checkin == checkout) prices to 0 and is bookable. A
// total of 0 with ok == true is a valid free stay, distinct from
// unavailability.
func PriceStay(p catalog.Property, avail catalog.Availability, checkin, checkout catalog.Day) (total int64, ok bool) {
	for night := checkin; night < checkout; night++ {
		rec, found := avail[catalog.NightKey{PropertyID: p.ID, Night: night}]
		if !found {
			total += p.NightlyPrice
			continue
		}
		if !rec.Available {
			return 0, false
		}
		total += rec.Price
	}
	return total, true
}
