package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"iq1090/internal/adsb"
)

// Supported output formats, selected by file extension.
const (
	FormatCSV  = ".csv"
	FormatJSON = ".json"
	FormatKML  = ".kml"
)

// feet to meters, for KML coordinates
const feetToMeters = 0.3048

// Write emits fixes to w in the given format.
func Write(w io.Writer, format string, fixes []adsb.PositionFix) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, fixes)
	case FormatJSON:
		return WriteJSON(w, fixes)
	case FormatKML:
		return WriteKML(w, fixes)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteCSV emits one row per fix with columns lat, lon, alt, icao. A
// missing altitude renders as an empty field.
func WriteCSV(w io.Writer, fixes []adsb.PositionFix) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"lat", "lon", "alt", "icao"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, fix := range fixes {
		alt := ""
		if fix.AltitudeFt != nil {
			alt = strconv.Itoa(*fix.AltitudeFt)
		}
		row := []string{
			strconv.FormatFloat(fix.Latitude, 'f', -1, 64),
			strconv.FormatFloat(fix.Longitude, 'f', -1, 64),
			alt,
			formatICAO(fix.ICAO),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonFix mirrors the CSV column set with JSON null for missing altitude.
type jsonFix struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Alt  *int    `json:"alt"`
	ICAO string  `json:"icao"`
}

// WriteJSON emits the fixes as a JSON array of objects.
func WriteJSON(w io.Writer, fixes []adsb.PositionFix) error {
	out := make([]jsonFix, 0, len(fixes))
	for _, fix := range fixes {
		out = append(out, jsonFix{
			Lat:  fix.Latitude,
			Lon:  fix.Longitude,
			Alt:  fix.AltitudeFt,
			ICAO: formatICAO(fix.ICAO),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteKML emits one LineString per aircraft, in KML lon,lat,alt order
// with altitude in meters.
func WriteKML(w io.Writer, fixes []adsb.PositionFix) error {
	// Group fixes per aircraft, preserving first-seen order.
	var order []uint32
	tracks := make(map[uint32][]adsb.PositionFix)
	for _, fix := range fixes {
		if _, seen := tracks[fix.ICAO]; !seen {
			order = append(order, fix.ICAO)
		}
		tracks[fix.ICAO] = append(tracks[fix.ICAO], fix)
	}

	if _, err := fmt.Fprint(w, kmlHeader); err != nil {
		return fmt.Errorf("failed to write KML header: %w", err)
	}

	for _, icao := range order {
		name := formatICAO(icao)
		if _, err := fmt.Fprintf(w, "    <Placemark>\n      <name>%s</name>\n      <LineString>\n        <altitudeMode>absolute</altitudeMode>\n        <coordinates>\n", name); err != nil {
			return fmt.Errorf("failed to write KML placemark: %w", err)
		}
		for _, fix := range tracks[icao] {
			altMeters := 0.0
			if fix.AltitudeFt != nil {
				altMeters = float64(*fix.AltitudeFt) * feetToMeters
			}
			if _, err := fmt.Fprintf(w, "          %s,%s,%s\n",
				strconv.FormatFloat(fix.Longitude, 'f', -1, 64),
				strconv.FormatFloat(fix.Latitude, 'f', -1, 64),
				strconv.FormatFloat(altMeters, 'f', 1, 64)); err != nil {
				return fmt.Errorf("failed to write KML coordinate: %w", err)
			}
		}
		if _, err := fmt.Fprint(w, "        </coordinates>\n      </LineString>\n    </Placemark>\n"); err != nil {
			return fmt.Errorf("failed to write KML placemark: %w", err)
		}
	}

	if _, err := fmt.Fprint(w, kmlFooter); err != nil {
		return fmt.Errorf("failed to write KML footer: %w", err)
	}
	return nil
}

const kmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>iq1090 decoded positions</name>
`

const kmlFooter = `  </Document>
</kml>
`

// formatICAO renders an aircraft address as 0x-prefixed lowercase hex.
func formatICAO(icao uint32) string {
	return fmt.Sprintf("0x%06x", icao)
}
