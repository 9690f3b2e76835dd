package render

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/masslots/parcelviz/internal/geometry"
	"github.com/masslots/parcelviz/internal/grid"
)

// GridOptions configures the grid choropleth map.
type GridOptions struct {
	Center       *[2]float64 // lat, lng; nil = data centroid
	Zoom         int
	Tiles        string
	CellSize     float64 // meters, for the legend caption
	TotalRecords int     // valid records in the dataset, for the legend
	MinValue     float64
	MaxValue     float64
}

// BuildGridMap converts an aggregation result into a decile-colored
// choropleth. Cell rectangles arrive in Web Mercator and are converted
// back to WGS84 for display; each cell's style and labels are bound when
// the feature is created.
func BuildGridMap(res *grid.Result, opts GridOptions) (*Map, error) {
	if res == nil || len(res.Stats) == 0 {
		return nil, eris.New("render: no cell statistics to draw")
	}

	center := opts.Center
	if center == nil {
		cx, cy := res.Partition.Region.Center()
		lng, lat := geometry.FromMercator(cx, cy)
		center = &[2]float64{lat, lng}
	}
	zoom := opts.Zoom
	if zoom == 0 {
		zoom = 12
	}

	m := New("Grid-Based Property Values", center[0], center[1], zoom, opts.Tiles)

	for _, stat := range res.Stats {
		cellWGS84 := geometry.UnprojectRect(stat.Cell.Rect)
		gj, err := geojson.Marshal(cellWGS84.Polygon())
		if err != nil {
			return nil, eris.Wrapf(err, "render: encode cell %s", stat.Cell.ID())
		}

		m.AddPolygon(Polygon{
			Geometry: gj,
			Style:    DecileStyle(stat.Bucket),
			Popup:    cellPopup(stat, opts.CellSize),
			Tooltip:  fmt.Sprintf("Median: %s (%d properties)", dollars(stat.Median), stat.Count),
		})
	}

	m.AddHTML(gridLegend(res, opts))
	return m, nil
}

// cellPopup builds the popup body for one grid cell.
func cellPopup(stat grid.CellStat, cellSize float64) string {
	miles := cellSize / metersPerMile
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif;">
<h4 style="margin: 0 0 10px 0; color: #333;">Grid Square Analysis</h4>
<p style="margin: 3px 0;"><b>Median Value: %s</b></p>
<p style="margin: 3px 0;"><b>Decile: %s</b></p>
<p style="margin: 3px 0;">Properties in grid: %d</p>
<p style="margin: 3px 0; font-size: 11px; color: #666;">Grid ID: %s</p>
<p style="margin: 3px 0; font-size: 11px; color: #666;">Size: %.2f mile &times; %.2f mile</p>
</div>`,
		dollars(stat.Median), DecileLabel(stat.Bucket), stat.Count, stat.Cell.ID(), miles, miles)
}
