package render

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/masslots/parcelviz/internal/grid"
	"github.com/masslots/parcelviz/internal/transit"
)

const metersPerMile = 1609.0

// usd formats dollar amounts with thousands separators.
var usd = message.NewPrinter(language.AmericanEnglish)

func dollars(v float64) string {
	return usd.Sprintf("$%d", int64(v+0.5))
}

// gridLegend builds the fixed-position decile legend for the grid map.
// Every bucket row shows its color swatch and global value range, so the
// legend reflects the whole distribution rather than the visible cells.
func gridLegend(res *grid.Result, opts GridOptions) template.HTML {
	var b strings.Builder

	miles := opts.CellSize / metersPerMile
	fmt.Fprintf(&b, `<div style="position: fixed; top: 10px; left: 50px; width: 350px;
	background-color: white; border: 2px solid grey; z-index: 9999;
	font-size: 13px; padding: 10px; border-radius: 5px;
	box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
<h4 style="margin-top: 0; color: #333;"><b>Boston Grid-Based Property Values</b></h4>
<p style="margin: 5px 0; color: #666;"><b>Median Values per %.2f Mile Grid Square (Deciles)</b></p>
`, miles)

	// Bucket k spans (threshold[k-2], threshold[k-1]]; the ends use the
	// dataset min and max.
	lo := opts.MinValue
	for bucket := 1; bucket <= 10; bucket++ {
		var hi float64
		if bucket == 10 {
			hi = opts.MaxValue
		} else {
			hi = res.Thresholds[bucket-1]
		}
		fmt.Fprintf(&b, `<p style="margin: 2px 0; font-size: 11px;"><span style="color: %s;">&#9632;</span> %s: %s - %s</p>
`, DecileColor(bucket), DecileLabel(bucket), dollars(lo), dollars(hi))
		lo = hi
	}

	fmt.Fprintf(&b, `<p style="margin: 3px 0; font-size: 10px; color: #888;">Grid squares with data: %d | Total properties: %s</p>
<p style="margin: 3px 0; font-size: 10px; color: #888;">No interpolation &bull; Click squares for details &bull; Median values only</p>
</div>`, len(res.Stats), usd.Sprintf("%d", opts.TotalRecords))

	return template.HTML(b.String())
}

// transitLegend builds the minimal rail-overlay legend.
func transitLegend() template.HTML {
	rows := []struct {
		color string
		label string
	}{
		{"#DA291C", "Heavy Rail (Red/Orange/Blue)"},
		{"#00843D", "Green Line"},
		{"#80276C", "Commuter Rail"},
	}

	var b strings.Builder
	b.WriteString(`<div style="position: fixed; bottom: 50px; left: 50px; width: 180px;
	background-color: white; border: 2px solid grey; z-index: 9999;
	font-size: 12px; padding: 8px;">
<p style="margin: 0 0 5px 0;"><b>MBTA Rail Transit</b></p>
`)
	for _, row := range rows {
		fmt.Fprintf(&b, `<p style="margin: 2px 0;"><span style="color: %s;">&#9679;</span> %s</p>
`, row.color, row.label)
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}

// campusLegend summarizes the university overlay.
func campusLegend(count, totalEnrollment int) template.HTML {
	return template.HTML(fmt.Sprintf(`<div style="position: fixed; bottom: 50px; right: 50px; width: 220px;
	background-color: white; border: 2px solid grey; z-index: 9999;
	font-size: 12px; padding: 8px;">
<p style="margin: 0 0 5px 0;"><b>Boston-Area Universities</b></p>
<p style="margin: 2px 0;"><span style="color: #1f77b4;">&#9679;</span> Campus (size &prop; enrollment)</p>
<p style="margin: 2px 0; font-size: 10px; color: #888;">%d institutions, %s students</p>
</div>`, count, usd.Sprintf("%d", totalEnrollment)))
}

// transitStopPopup builds the popup for one rail stop.
func transitStopPopup(s transit.Stop) string {
	return fmt.Sprintf("<b>%s</b><br>%s", s.Name, s.TypeLabel())
}
