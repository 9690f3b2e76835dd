package render

import (
	"fmt"

	"github.com/masslots/parcelviz/internal/campus"
	"github.com/masslots/parcelviz/internal/transit"
)

// AddTransitOverlay draws rail stops as small colored circle markers and
// appends the rail legend. Stops are expected already filtered to the
// metro rail network.
func AddTransitOverlay(m *Map, stops []transit.Stop) {
	if len(stops) == 0 {
		return
	}
	for _, s := range stops {
		m.AddMarker(Marker{
			Lat:     s.Lat,
			Lng:     s.Lng,
			Radius:  4,
			Style:   MarkerStyle(s.Color()),
			Popup:   transitStopPopup(s),
			Tooltip: s.Name,
		})
	}
	m.AddHTML(transitLegend())
}

// AddCampusOverlay draws universities as circle markers scaled by
// enrollment and appends the campus legend.
func AddCampusOverlay(m *Map, universities []campus.University) {
	if len(universities) == 0 {
		return
	}
	total := 0
	for _, u := range universities {
		total += u.Enrollment
		m.AddMarker(Marker{
			Lat:     u.Lat,
			Lng:     u.Lng,
			Radius:  campusRadius(u.Enrollment),
			Style:   MarkerStyle("#1f77b4"),
			Popup:   campusPopup(u),
			Tooltip: u.Name,
		})
	}
	m.AddHTML(campusLegend(len(universities), total))
}

// campusRadius scales marker size with enrollment, clamped so small
// colleges stay visible and the largest do not swallow the map.
func campusRadius(enrollment int) float64 {
	r := float64(enrollment) / 2000
	if r < 4 {
		return 4
	}
	if r > 20 {
		return 20
	}
	return r
}

func campusPopup(u campus.University) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif;">
<b>%s</b><br>
%s<br>
Enrollment: %s
</div>`, u.Name, u.City, usd.Sprintf("%d", u.Enrollment))
}
