// Package transit loads MBTA rail stops from a GTFS feed for map overlays.
// Only rail service is kept (light rail, heavy rail, commuter rail); buses
// and ferries are filtered out.
package transit

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// GTFS vehicle type codes.
const (
	VehicleLightRail    = 0
	VehicleHeavyRail    = 1
	VehicleCommuterRail = 2
)

// MetroCities is the Boston metro municipality roster used to clip the
// stop set. Loaded once, never written after initialization.
var MetroCities = []string{
	"BOSTON", "CAMBRIDGE", "SOMERVILLE", "BROOKLINE", "NEWTON",
	"WATERTOWN", "WALTHAM", "BELMONT", "ARLINGTON", "LEXINGTON",
	"WINCHESTER", "MEDFORD", "MALDEN", "EVERETT", "REVERE",
	"CHELSEA", "WINTHROP", "QUINCY", "MILTON", "DEDHAM", "NEEDHAM",
}

// Stop is one rail transit stop.
type Stop struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Municipality string  `json:"municipality"`
	VehicleType  int     `json:"vehicle_type"`
}

// TypeLabel returns the display name for the stop's service type.
func (s Stop) TypeLabel() string {
	switch s.VehicleType {
	case VehicleLightRail:
		return "Green Line"
	case VehicleHeavyRail:
		return "Heavy Rail"
	case VehicleCommuterRail:
		return "Commuter Rail"
	default:
		return "Rail"
	}
}

// Color returns the MBTA brand color for the stop's service type.
func (s Stop) Color() string {
	switch s.VehicleType {
	case VehicleLightRail:
		return "#00843D"
	case VehicleHeavyRail:
		return "#DA291C"
	case VehicleCommuterRail:
		return "#80276C"
	default:
		return "#333333"
	}
}

// LoadStops reads stops.txt from a GTFS directory and returns the rail
// stops within the metro municipality roster. Stops with missing
// coordinates are skipped.
func LoadStops(gtfsDir string) ([]Stop, error) {
	path := filepath.Join(gtfsDir, "stops.txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "transit: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "transit: read stops header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"stop_id", "stop_name", "stop_lat", "stop_lon"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("transit: stops.txt missing column %q", required)
		}
	}

	metro := make(map[string]bool, len(MetroCities))
	for _, c := range MetroCities {
		metro[c] = true
	}

	var stops []Stop
	var skipped int
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "transit: read stops row")
		}

		municipality := strings.ToUpper(field(row, col, "municipality"))
		if !metro[municipality] {
			continue
		}

		vt, err := strconv.Atoi(field(row, col, "vehicle_type"))
		if err != nil || !isRail(vt) {
			continue
		}

		lat, latErr := strconv.ParseFloat(field(row, col, "stop_lat"), 64)
		lng, lngErr := strconv.ParseFloat(field(row, col, "stop_lon"), 64)
		if latErr != nil || lngErr != nil {
			skipped++
			continue
		}

		stops = append(stops, Stop{
			ID:           field(row, col, "stop_id"),
			Name:         field(row, col, "stop_name"),
			Lat:          lat,
			Lng:          lng,
			Municipality: municipality,
			VehicleType:  vt,
		})
	}

	zap.L().Info("transit: loaded rail stops",
		zap.String("gtfs_dir", gtfsDir),
		zap.Int("stops", len(stops)),
		zap.Int("skipped", skipped),
	)
	return stops, nil
}

func isRail(vehicleType int) bool {
	return vehicleType == VehicleLightRail ||
		vehicleType == VehicleHeavyRail ||
		vehicleType == VehicleCommuterRail
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
