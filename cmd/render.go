package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/grid"
	"github.com/masslots/parcelviz/internal/parcel"
	"github.com/masslots/parcelviz/internal/render"
	"github.com/masslots/parcelviz/internal/store"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render interactive maps from an imported dataset",
}

func init() {
	renderCmd.PersistentFlags().StringVar(&renderOut, "out", "", "output HTML path (default under render.output_dir)")
	rootCmd.AddCommand(renderCmd)
}

// loadDataset returns the valid records of a named dataset in WGS84.
func loadDataset(ctx context.Context, name string) ([]parcel.Record, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	return loadDatasetFrom(ctx, st, name)
}

// loadDatasetFrom loads from an already-open store.
func loadDatasetFrom(ctx context.Context, st store.Store, name string) ([]parcel.Record, error) {
	records, err := st.LoadRecords(ctx, name)
	if err != nil {
		return nil, err
	}
	records = parcel.FilterValid(records)
	if len(records) == 0 {
		return nil, eris.Errorf("render: dataset %q has no usable parcels", name)
	}
	return records, nil
}

// aggregateDataset projects records to Web Mercator and runs the grid
// aggregation at the given cell size.
func aggregateDataset(ctx context.Context, records []parcel.Record, side float64) (*grid.Result, error) {
	geoms, values := parcel.Split(parcel.Project(records))
	return grid.Run(ctx, geoms, values, side)
}

// valueRange returns the min and max assessed value in the record set.
func valueRange(records []parcel.Record) (float64, float64) {
	lo, hi := records[0].Value, records[0].Value
	for _, r := range records[1:] {
		if r.Value < lo {
			lo = r.Value
		}
		if r.Value > hi {
			hi = r.Value
		}
	}
	return lo, hi
}

// outputPath resolves the output file, defaulting under the configured
// output directory.
func outputPath(defaultName string) string {
	if renderOut != "" {
		return renderOut
	}
	return filepath.Join(cfg.Render.OutputDir, defaultName)
}

// saveMap writes the map and records it in the run manifest.
func saveMap(m *render.Map, path, kind, dataset string, records int) error {
	if err := m.Save(path); err != nil {
		return err
	}

	manifestPath := filepath.Join(filepath.Dir(path), "manifest.yaml")
	manifest, err := render.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	manifest.Add(render.Artifact{
		Path:      filepath.Base(path),
		Kind:      kind,
		Title:     m.Title,
		Dataset:   dataset,
		Records:   records,
		CreatedAt: time.Now().UTC(),
	})
	return manifest.Save(manifestPath)
}
