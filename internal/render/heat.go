package render

import (
	"fmt"
	"html/template"
	"math"

	"github.com/rotisserie/eris"

	"github.com/masslots/parcelviz/internal/grid"
)

// HeatMode selects the intensity mapping for heat maps.
type HeatMode string

// Supported heat map variants.
const (
	// HeatLog maps intensity to log-scaled value position, compressing
	// the long right tail of assessment values.
	HeatLog HeatMode = "log"
	// HeatQuartile assigns a fixed intensity per quartile for clear
	// visual separation.
	HeatQuartile HeatMode = "quartile"
	// HeatTiered draws separate layers for the bottom half, the upper
	// middle, and the top decile of the distribution.
	HeatTiered HeatMode = "tiered"
)

// HeatPoint is one parcel centroid with its assessed value, in WGS84.
type HeatPoint struct {
	Lat   float64
	Lng   float64
	Value float64
}

// HeatOptions configures heat map rendering.
type HeatOptions struct {
	Mode    HeatMode
	Center  *[2]float64
	Zoom    int
	Radius  int
	Blur    int
	MaxZoom int
	Tiles   string
}

// BuildHeatMap renders parcel centroids as a heat map using the selected
// intensity mapping.
func BuildHeatMap(points []HeatPoint, opts HeatOptions) (*Map, error) {
	if len(points) == 0 {
		return nil, eris.New("render: no points for heat map")
	}

	center := opts.Center
	if center == nil {
		c := centerOfPoints(points)
		center = &c
	}
	zoom := opts.Zoom
	if zoom == 0 {
		zoom = 12
	}
	radius := opts.Radius
	if radius == 0 {
		radius = 25
	}
	blur := opts.Blur
	if blur == 0 {
		blur = 20
	}
	maxZoom := opts.MaxZoom
	if maxZoom == 0 {
		maxZoom = 18
	}

	tiles := opts.Tiles
	if tiles == "" {
		tiles = TilesOpenStreetMap
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	switch opts.Mode {
	case HeatQuartile:
		return quartileHeatMap(points, values, center, zoom, radius, blur, maxZoom, tiles)
	case HeatTiered:
		return tieredHeatMap(points, values, center, zoom, maxZoom, tiles)
	case HeatLog, "":
		return logHeatMap(points, values, center, zoom, radius, blur, maxZoom, tiles)
	default:
		return nil, eris.Errorf("render: unknown heat mode %q", opts.Mode)
	}
}

func logHeatMap(points []HeatPoint, values []float64, center *[2]float64, zoom, radius, blur, maxZoom int, tiles string) (*Map, error) {
	m := New("Log-Normalized Assessment Heat Map", center[0], center[1], zoom, tiles)

	logMin, logMax := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lv := math.Log(v)
		logMin = math.Min(logMin, lv)
		logMax = math.Max(logMax, lv)
	}
	span := logMax - logMin

	heat := HeatLayer{Radius: radius, Blur: blur, MaxZoom: maxZoom}
	for _, p := range points {
		intensity := 1.0
		if span > 0 {
			intensity = (math.Log(p.Value) - logMin) / span
		}
		heat.Points = append(heat.Points, [3]float64{p.Lat, p.Lng, intensity})
	}
	m.AddHeat(heat)

	m.AddHTML(heatTitle("Log-Normalized Intensity",
		fmt.Sprintf("Values %s - %s on a logarithmic scale", dollars(math.Exp(logMin)), dollars(math.Exp(logMax)))))
	return m, nil
}

func quartileHeatMap(points []HeatPoint, values []float64, center *[2]float64, zoom, radius, blur, maxZoom int, tiles string) (*Map, error) {
	q25, err := grid.Quantile(values, 0.25)
	if err != nil {
		return nil, err
	}
	q50, _ := grid.Quantile(values, 0.5)
	q75, _ := grid.Quantile(values, 0.75)

	m := New("Quartile-Based Assessment Heat Map", center[0], center[1], zoom, tiles)

	heat := HeatLayer{
		Radius:  radius,
		Blur:    blur,
		MaxZoom: maxZoom,
		Gradient: map[string]string{
			"0.0":  "#000080",
			"0.25": "#4080FF",
			"0.5":  "#40FF80",
			"0.75": "#FFFF40",
			"1.0":  "#FF0000",
		},
	}
	for _, p := range points {
		heat.Points = append(heat.Points, [3]float64{p.Lat, p.Lng, quartileIntensity(p.Value, q25, q50, q75)})
	}
	m.AddHeat(heat)

	minV, maxV := minMax(values)
	m.AddHTML(heatTitle("Quartile-Based Intensity", fmt.Sprintf(
		"Q1: %s - %s &bull; Q2: %s - %s &bull; Q3: %s - %s &bull; Q4: %s - %s",
		dollars(minV), dollars(q25), dollars(q25), dollars(q50),
		dollars(q50), dollars(q75), dollars(q75), dollars(maxV))))
	return m, nil
}

// quartileIntensity maps a value to a fixed per-quartile intensity so each
// quartile stays visually distinct.
func quartileIntensity(v, q25, q50, q75 float64) float64 {
	switch {
	case v <= q25:
		return 0.2
	case v <= q50:
		return 0.4
	case v <= q75:
		return 0.7
	default:
		return 1.0
	}
}

// tieredHeatMap draws three stacked layers so dense cheap areas cannot
// wash out the sparse expensive ones: bottom half with a wide cool layer,
// the 50th-90th percentile band warmer, and the top decile as tight hot
// spots.
func tieredHeatMap(points []HeatPoint, values []float64, center *[2]float64, zoom, maxZoom int, tiles string) (*Map, error) {
	q50, err := grid.Quantile(values, 0.5)
	if err != nil {
		return nil, err
	}
	q90, _ := grid.Quantile(values, 0.9)

	m := New("Multi-Tier Assessment Heat Map", center[0], center[1], zoom, tiles)

	tiers := []struct {
		keep     func(v float64) bool
		radius   int
		blur     int
		strength float64
		gradient map[string]string
	}{
		{func(v float64) bool { return v <= q50 }, 35, 30, 0.4,
			map[string]string{"0.0": "#000080", "1.0": "#4080FF"}},
		{func(v float64) bool { return v > q50 && v <= q90 }, 25, 20, 0.7,
			map[string]string{"0.0": "#40FF80", "1.0": "#FFFF40"}},
		{func(v float64) bool { return v > q90 }, 15, 10, 1.0,
			map[string]string{"0.0": "#FF8000", "1.0": "#FF0000"}},
	}

	for _, tier := range tiers {
		heat := HeatLayer{Radius: tier.radius, Blur: tier.blur, MaxZoom: maxZoom, Gradient: tier.gradient}
		for _, p := range points {
			if tier.keep(p.Value) {
				heat.Points = append(heat.Points, [3]float64{p.Lat, p.Lng, tier.strength})
			}
		}
		if len(heat.Points) > 0 {
			m.AddHeat(heat)
		}
	}

	m.AddHTML(heatTitle("Multi-Tier Intensity", fmt.Sprintf(
		"Bottom 50%% &le; %s &bull; Middle to %s &bull; Top 10%% above", dollars(q50), dollars(q90))))
	return m, nil
}

func heatTitle(subtitle, detail string) template.HTML {
	return template.HTML(fmt.Sprintf(`<div style="position: fixed; top: 10px; left: 50px; width: 360px;
	background-color: white; border: 2px solid grey; z-index: 9999;
	font-size: 13px; padding: 10px; border-radius: 5px;">
<h4 style="margin: 0; color: #333;">Boston Assessment Heat Map</h4>
<p style="margin: 4px 0;"><b>%s</b></p>
<p style="margin: 4px 0; font-size: 11px; color: #666;">%s</p>
</div>`, subtitle, detail))
}

func centerOfPoints(points []HeatPoint) [2]float64 {
	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}
	return [2]float64{(minLat + maxLat) / 2, (minLng + maxLng) / 2}
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
