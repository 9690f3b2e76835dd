package render

// Style is the visual style for a shape, bound to the shape when it is
// created. Field names match Leaflet path options.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// decilePalette maps bucket 1..10 to a diverging blue-to-red fill ramp:
// dark blue for the cheapest decile through dark red for the most
// expensive.
var decilePalette = [10]string{
	"#08306b", // D1 (bottom 10%)
	"#08519c", // D2
	"#3182bd", // D3
	"#6baed6", // D4
	"#9ecae1", // D5
	"#c6dbef", // D6
	"#fcae91", // D7
	"#fb6a4a", // D8
	"#de2d26", // D9
	"#a50f15", // D10 (top 10%)
}

// decileLabels are the display labels for bucket 1..10.
var decileLabels = [10]string{
	"D1 (Bottom 10%)", "D2 (10%-20%)", "D3 (20%-30%)", "D4 (30%-40%)",
	"D5 (40%-50%)", "D6 (50%-60%)", "D7 (60%-70%)", "D8 (70%-80%)",
	"D9 (80%-90%)", "D10 (Top 10%)",
}

// DecileColor returns the fill color for a decile bucket (1..10).
// Out-of-range buckets clamp to the nearest end.
func DecileColor(bucket int) string {
	return decilePalette[clampBucket(bucket)-1]
}

// DecileLabel returns the display label for a decile bucket (1..10).
func DecileLabel(bucket int) string {
	return decileLabels[clampBucket(bucket)-1]
}

// DecileStyle returns the semi-transparent cell style for a decile bucket,
// letting the base map show through.
func DecileStyle(bucket int) Style {
	color := DecileColor(bucket)
	return Style{
		Color:       color,
		FillColor:   color,
		Weight:      1,
		Opacity:     0.6,
		FillOpacity: 0.4,
	}
}

// MarkerStyle returns a filled circle-marker style in a single color.
func MarkerStyle(color string) Style {
	return Style{
		Color:       color,
		FillColor:   color,
		Weight:      1,
		Opacity:     1,
		FillOpacity: 0.8,
	}
}

func clampBucket(bucket int) int {
	if bucket < 1 {
		return 1
	}
	if bucket > 10 {
		return 10
	}
	return bucket
}
