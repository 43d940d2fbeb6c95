// Package output renders result rows in the reference CSV encoding:
// one `search_id,rank,property_id,total_cost` line per row, grouped by
// search in input-search order.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alex-user-go/staysearch/internal/search"
)

// WriteRows writes rows to w in the order given.
func WriteRows(w io.Writer, rows []search.Row) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		record := []string{
			r.SearchID,
			strconv.Itoa(r.Rank),
			r.PropertyID,
			strconv.FormatInt(r.TotalCost, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing result row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing results: %w", err)
	}
	return nil
}
