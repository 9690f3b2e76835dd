package main

import (
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/geometry"
	"github.com/masslots/parcelviz/internal/parcel"
	"github.com/masslots/parcelviz/internal/render"
)

var heatMode string

var renderHeatCmd = &cobra.Command{
	Use:   "heat <dataset>",
	Short: "Render a heat map over parcel centroids",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dataset := args[0]

		records, err := loadDataset(ctx, dataset)
		if err != nil {
			return err
		}

		points := heatPoints(records)
		m, err := render.BuildHeatMap(points, render.HeatOptions{
			Mode:  render.HeatMode(heatMode),
			Zoom:  cfg.Render.Zoom,
			Tiles: cfg.Render.Tiles,
		})
		if err != nil {
			return err
		}

		return saveMap(m, outputPath(dataset+"_heat_"+heatMode+".html"), "heat", dataset, len(points))
	},
}

// heatPoints converts records to centroid heat points.
func heatPoints(records []parcel.Record) []render.HeatPoint {
	points := make([]render.HeatPoint, 0, len(records))
	for _, r := range records {
		lng, lat := geometry.Centroid(r.Geom)
		points = append(points, render.HeatPoint{Lat: lat, Lng: lng, Value: r.Value})
	}
	return points
}

func init() {
	renderHeatCmd.Flags().StringVar(&heatMode, "mode", "log", "intensity mapping: log, quartile, or tiered")
	renderCmd.AddCommand(renderHeatCmd)
}
