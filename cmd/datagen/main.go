// Command datagen emits synthetic section-format input for load testing:
// a random catalog, a sprinkling of availability records, and searches
// clustered over the same region.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
)

func main() {
	var (
		properties = flag.Int("properties", 1000, "number of properties")
		dates      = flag.Int("dates", 2000, "number of availability records")
		searches   = flag.Int("searches", 100, "number of searches")
		seed       = flag.Int64("seed", 1, "random seed")
		centerLat  = flag.Float64("center-lat", 37.77, "center latitude of the region")
		centerLng  = flag.Float64("center-lng", -122.42, "center longitude of the region")
		spread     = flag.Float64("spread", 5.0, "max degrees properties scatter from the center")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	propertyIDs := make([]string, *properties)
	baseDay := "2024-06-"

	fmt.Fprintln(w, "Properties")
	for i := range propertyIDs {
		id := uuid.NewString()
		propertyIDs[i] = id
		lat := *centerLat + (rng.Float64()*2-1)*(*spread)
		lng := *centerLng + (rng.Float64()*2-1)*(*spread)
		price := 50 + rng.Intn(450)
		fmt.Fprintf(w, "%s,%.4f,%.4f,%d\n", id, lat, lng, price)
	}

	fmt.Fprintln(w, "Dates")
	seen := make(map[string]struct{})
	// Bail after enough dup collisions so a tiny catalog can't spin forever.
	for written, attempts := 0, 0; written < *dates && len(propertyIDs) > 0 && attempts < *dates*10; attempts++ {
		id := propertyIDs[rng.Intn(len(propertyIDs))]
		day := fmt.Sprintf("%s%02d", baseDay, 1+rng.Intn(28))
		key := id + day
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		available := 1
		if rng.Float64() < 0.2 {
			available = 0
		}
		price := 40 + rng.Intn(500)
		fmt.Fprintf(w, "%s,%s,%d,%d\n", id, day, available, price)
		written++
	}

	fmt.Fprintln(w, "Searches")
	for i := 0; i < *searches; i++ {
		lat := *centerLat + (rng.Float64()*2-1)*(*spread)
		lng := *centerLng + (rng.Float64()*2-1)*(*spread)
		checkinDay := 1 + rng.Intn(20)
		nights := 1 + rng.Intn(7)
		fmt.Fprintf(w, "%s,%.4f,%.4f,%s%02d,%s%02d\n",
			uuid.NewString(), lat, lng, baseDay, checkinDay, baseDay, checkinDay+nights)
	}
}
