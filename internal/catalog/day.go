package catalog

import (
	"fmt"
	"time"
)

// Day is a calendar date with day precision, stored as days since the Unix
// epoch. Being a plain integer it is comparable, ordered, and cheap to use
// as a map key, and iterating the nights of a stay is a counting loop.
type Day int

const dayLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ParseDay parses a date in YYYY-MM-DD format.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	return Day(t.Unix() / secondsPerDay), nil
}

// Add returns the day n days later.
func (d Day) Add(n int) Day {
	return d + Day(n)
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC().Format(dayLayout)
}
