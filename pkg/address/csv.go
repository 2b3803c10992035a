package address

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader is the exact column order spec.md §6 mandates for the Address
// CSV output.
var csvHeader = []string{
	"pid", "name", "city", "postcode", "street", "housenumber",
	"simc", "amenity", "lon", "lat", "street_distance", "city_from_area",
	"postcode_from_area",
}

// WriteCSV serializes every resolved Place in state to w, header first.
// city_from_area and postcode_from_area serialize as "1"/"0" rather than
// Go's "true"/"false", matching the original's csv.writer output.
func WriteCSV(w io.Writer, state *State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("address: write csv header: %w", err)
	}

	for _, p := range state.Places {
		record := []string{
			p.PID,
			p.Name,
			p.Addr.City,
			p.Addr.Postcode,
			p.Addr.Street,
			p.Addr.HouseNumber,
			p.Addr.CitySimc,
			p.Amenity,
			strconv.FormatFloat(p.Point[0], 'f', -1, 64),
			strconv.FormatFloat(p.Point[1], 'f', -1, 64),
			strconv.FormatFloat(p.StreetDistance, 'f', -1, 64),
			boolFlag(p.CityFromArea),
			boolFlag(p.PostcodeFromArea),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("address: write csv row %s: %w", p.PID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("address: flush csv: %w", err)
	}
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
