package parcel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/masslots/parcelviz/internal/geometry"
)

// writeFixture creates a small parcel shapefile with LOC_ID and TOTAL_VAL
// columns, mirroring the layout of a MassGIS L3 extract.
func writeFixture(t *testing.T, rows []fixtureRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parcels.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.StringField("LOC_ID", 25),
		shp.FloatField("TOTAL_VAL", 13, 2),
	})

	for i, row := range rows {
		w.Write(squareShape(row.minX, row.minY, row.minX+row.size, row.minY+row.size))
		require.NoError(t, w.WriteAttribute(i, 0, row.id))
		require.NoError(t, w.WriteAttribute(i, 1, row.value))
	}
	w.Close()

	// go-shp's writer names the attribute table "<base>dbf" while the
	// reader opens "<base>.dbf"; rename so the fixture round-trips.
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	return path
}

type fixtureRow struct {
	id         string
	value      float64
	minX, minY float64
	size       float64
}

func squareShape(minX, minY, maxX, maxY float64) *shp.Polygon {
	points := []shp.Point{
		{X: minX, Y: minY},
		{X: minX, Y: maxY},
		{X: maxX, Y: maxY},
		{X: maxX, Y: minY},
		{X: minX, Y: minY},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY},
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
}

func TestLoadShapefile(t *testing.T) {
	path := writeFixture(t, []fixtureRow{
		{id: "M_1", value: 450000, minX: -71.10, minY: 42.30, size: 0.001},
		{id: "M_2", value: 980000, minX: -71.09, minY: 42.31, size: 0.001},
	})

	records, err := LoadShapefile(path, LoadOptions{ValueField: "TOTAL_VAL", IDField: "LOC_ID"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "M_1", records[0].ID)
	assert.InDelta(t, 450000, records[0].Value, 0.01)
	mp, ok := records[0].Geom.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 1, mp.NumPolygons())

	assert.Equal(t, "M_2", records[1].ID)
	assert.InDelta(t, 980000, records[1].Value, 0.01)
}

func TestLoadShapefile_SkipsNonPositiveValues(t *testing.T) {
	path := writeFixture(t, []fixtureRow{
		{id: "KEEP", value: 100000, minX: -71.1, minY: 42.3, size: 0.001},
		{id: "ZERO", value: 0, minX: -71.2, minY: 42.3, size: 0.001},
		{id: "NEG", value: -10, minX: -71.3, minY: 42.3, size: 0.001},
	})

	records, err := LoadShapefile(path, LoadOptions{ValueField: "TOTAL_VAL", IDField: "LOC_ID"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "KEEP", records[0].ID)
}

func TestLoadShapefile_OrdinalIDWhenFieldMissing(t *testing.T) {
	path := writeFixture(t, []fixtureRow{
		{id: "ignored", value: 100000, minX: -71.1, minY: 42.3, size: 0.001},
	})

	records, err := LoadShapefile(path, LoadOptions{ValueField: "TOTAL_VAL"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ID)
}

func TestLoadShapefile_FieldNameCaseInsensitive(t *testing.T) {
	path := writeFixture(t, []fixtureRow{
		{id: "M_1", value: 100000, minX: -71.1, minY: 42.3, size: 0.001},
	})

	records, err := LoadShapefile(path, LoadOptions{ValueField: "total_val", IDField: "loc_id"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M_1", records[0].ID)
}

func TestLoadShapefile_MissingValueColumn(t *testing.T) {
	path := writeFixture(t, []fixtureRow{
		{id: "M_1", value: 100000, minX: -71.1, minY: 42.3, size: 0.001},
	})

	_, err := LoadShapefile(path, LoadOptions{ValueField: "NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no column")
}

func TestLoadShapefile_RequiresValueField(t *testing.T) {
	_, err := LoadShapefile("whatever.shp", LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value field is required")
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"), LoadOptions{ValueField: "TOTAL_VAL"})
	assert.Error(t, err)
}

func TestShapeToGeom_HoleRings(t *testing.T) {
	// Outer ring clockwise, courtyard ring counter-clockwise, per the
	// shapefile winding convention.
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 4, Y: 4}}
	shape := &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points:    append(outer, hole...),
	}

	g := shapeToGeom(shape)
	require.NotNil(t, g)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())

	// A cell inside the courtyard does not touch the parcel.
	assert.False(t, geometry.Intersects(g, geometry.NewRect(4.5, 4.5, 5.5, 5.5)))
	// A cell straddling the courtyard boundary does.
	assert.True(t, geometry.Intersects(g, geometry.NewRect(3, 3, 5, 5)))
	// So does one in the solid interior.
	assert.True(t, geometry.Intersects(g, geometry.NewRect(1, 1, 2, 2)))
}

func TestShapeToGeom_SeparateOuterRings(t *testing.T) {
	a := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	b := []shp.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5}}
	shape := &shp.Polygon{
		Box:       shp.Box{MinX: 0, MinY: 0, MaxX: 6, MaxY: 6},
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points:    append(a, b...),
	}

	mp, ok := shapeToGeom(shape).(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
}

func TestShapeToGeom_NonPolygon(t *testing.T) {
	assert.Nil(t, shapeToGeom(&shp.Point{X: 1, Y: 2}))
	assert.Nil(t, shapeToGeom(nil))
	assert.Nil(t, shapeToGeom(&shp.Polygon{}))
}
