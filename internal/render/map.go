// Package render writes interactive Leaflet maps as self-contained static
// HTML: decile-colored grid choropleths, heat maps over parcel centroids,
// and transit/university overlays. Every shape carries its style as a
// value object bound when the shape is created; nothing is computed lazily
// at draw time.
package render

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Tile layer names.
const (
	TilesPositron      = "cartodb-positron"
	TilesOpenStreetMap = "openstreetmap"
)

// tileLayers maps tile names to Leaflet URL templates and attributions.
var tileLayers = map[string]struct {
	URL         string
	Attribution string
}{
	TilesPositron: {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
	},
	TilesOpenStreetMap: {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
	},
}

// Polygon is one styled polygon feature. The style is attached at
// creation time.
type Polygon struct {
	Geometry json.RawMessage `json:"geometry"` // GeoJSON geometry
	Style    Style           `json:"style"`
	Popup    string          `json:"popup,omitempty"`
	Tooltip  string          `json:"tooltip,omitempty"`
}

// Marker is a circle marker at a lat/lng position.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Radius  float64 `json:"radius"`
	Style   Style   `json:"style"`
	Popup   string  `json:"popup,omitempty"`
	Tooltip string  `json:"tooltip,omitempty"`
}

// HeatLayer is a Leaflet.heat layer: [lat, lng, intensity] points with a
// gradient keyed by normalized intensity.
type HeatLayer struct {
	Points   [][3]float64      `json:"points"`
	Radius   int               `json:"radius"`
	Blur     int               `json:"blur"`
	MaxZoom  int               `json:"maxZoom"`
	Gradient map[string]string `json:"gradient,omitempty"`
}

// Map accumulates layers and emits one standalone HTML document.
type Map struct {
	Title  string
	Center [2]float64 // lat, lng
	Zoom   int
	Tiles  string

	polygons []Polygon
	markers  []Marker
	heat     []HeatLayer
	blocks   []template.HTML
}

// New creates a map centered at lat/lng. Unknown tile names fall back to
// OpenStreetMap.
func New(title string, lat, lng float64, zoom int, tiles string) *Map {
	if _, ok := tileLayers[tiles]; !ok {
		tiles = TilesOpenStreetMap
	}
	return &Map{Title: title, Center: [2]float64{lat, lng}, Zoom: zoom, Tiles: tiles}
}

// AddPolygon appends a styled polygon feature.
func (m *Map) AddPolygon(p Polygon) { m.polygons = append(m.polygons, p) }

// AddMarker appends a circle marker.
func (m *Map) AddMarker(mk Marker) { m.markers = append(m.markers, mk) }

// AddHeat appends a heat layer.
func (m *Map) AddHeat(h HeatLayer) { m.heat = append(m.heat, h) }

// AddHTML appends a raw HTML block (legend, title banner) to the document
// body. The caller is responsible for the block's content.
func (m *Map) AddHTML(block template.HTML) { m.blocks = append(m.blocks, block) }

// Save renders the map to a standalone HTML file, creating parent
// directories as needed.
func (m *Map) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "render: create output dir for %s", path)
	}

	polygonsJSON, err := json.Marshal(m.polygons)
	if err != nil {
		return eris.Wrap(err, "render: marshal polygons")
	}
	markersJSON, err := json.Marshal(m.markers)
	if err != nil {
		return eris.Wrap(err, "render: marshal markers")
	}
	heatJSON, err := json.Marshal(m.heat)
	if err != nil {
		return eris.Wrap(err, "render: marshal heat layers")
	}

	tiles := tileLayers[m.Tiles]
	data := map[string]any{
		"Title":       m.Title,
		"Lat":         m.Center[0],
		"Lng":         m.Center[1],
		"Zoom":        m.Zoom,
		"TileURL":     tiles.URL,
		"Attribution": tiles.Attribution,
		"Polygons":    template.JS(polygonsJSON),
		"Markers":     template.JS(markersJSON),
		"Heat":        template.JS(heatJSON),
		"NeedsHeat":   len(m.heat) > 0,
		"Blocks":      m.blocks,
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := mapTemplate.Execute(f, data); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}

	zap.L().Info("render: map saved",
		zap.String("path", path),
		zap.Int("polygons", len(m.polygons)),
		zap.Int("markers", len(m.markers)),
		zap.Int("heat_layers", len(m.heat)),
	)
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
{{if .NeedsHeat}}<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
{{end}}<style>
html, body { margin: 0; padding: 0; height: 100%; }
#map { width: 100%; height: 100%; }
</style>
</head>
<body>
<div id="map"></div>
{{range .Blocks}}{{.}}
{{end}}<script>
var map = L.map("map").setView([{{.Lat}}, {{.Lng}}], {{.Zoom}});
L.tileLayer("{{.TileURL}}", {attribution: '{{.Attribution}}'}).addTo(map);

var polygons = {{.Polygons}};
polygons.forEach(function (p) {
	var layer = L.geoJSON(p.geometry, {style: p.style});
	if (p.popup) { layer.bindPopup(p.popup, {maxWidth: 300}); }
	if (p.tooltip) { layer.bindTooltip(p.tooltip); }
	layer.addTo(map);
});

var markers = {{.Markers}};
markers.forEach(function (m) {
	var layer = L.circleMarker([m.lat, m.lng], {
		radius: m.radius,
		color: m.style.color,
		fillColor: m.style.fillColor,
		weight: m.style.weight,
		opacity: m.style.opacity,
		fillOpacity: m.style.fillOpacity
	});
	if (m.popup) { layer.bindPopup(m.popup); }
	if (m.tooltip) { layer.bindTooltip(m.tooltip); }
	layer.addTo(map);
});

var heatLayers = {{.Heat}};
heatLayers.forEach(function (h) {
	var opts = {radius: h.radius, blur: h.blur, maxZoom: h.maxZoom};
	if (h.gradient) { opts.gradient = h.gradient; }
	L.heatLayer(h.points, opts).addTo(map);
});
</script>
</body>
</html>
`))
