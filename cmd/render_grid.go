package main

import (
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/campus"
	"github.com/masslots/parcelviz/internal/render"
	"github.com/masslots/parcelviz/internal/transit"
)

var (
	gridCellSize    float64
	gridWithTransit bool
	gridWithCampus  bool
	gridZoom        int
)

var renderGridCmd = &cobra.Command{
	Use:   "grid <dataset>",
	Short: "Render a decile-colored grid choropleth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dataset := args[0]

		records, err := loadDataset(ctx, dataset)
		if err != nil {
			return err
		}

		side := gridCellSize
		if side == 0 {
			side = cfg.Grid.CellSizeMeters
		}

		res, err := aggregateDataset(ctx, records, side)
		if err != nil {
			return err
		}

		minV, maxV := valueRange(records)
		zoom := gridZoom
		if zoom == 0 {
			zoom = cfg.Render.Zoom
		}

		m, err := render.BuildGridMap(res, render.GridOptions{
			Zoom:         zoom,
			Tiles:        cfg.Render.Tiles,
			CellSize:     side,
			TotalRecords: len(records),
			MinValue:     minV,
			MaxValue:     maxV,
		})
		if err != nil {
			return err
		}

		if gridWithTransit {
			stops, err := transit.LoadStops(cfg.Data.GTFSDir)
			if err != nil {
				return err
			}
			render.AddTransitOverlay(m, stops)
		}
		if gridWithCampus {
			render.AddCampusOverlay(m, campus.Universities)
		}

		return saveMap(m, outputPath(dataset+"_grid.html"), "grid", dataset, len(records))
	},
}

func init() {
	renderGridCmd.Flags().Float64Var(&gridCellSize, "cell-size", 0, "grid cell side in meters (default from config)")
	renderGridCmd.Flags().BoolVar(&gridWithTransit, "transit", false, "overlay MBTA rail stops")
	renderGridCmd.Flags().BoolVar(&gridWithCampus, "campus", false, "overlay university campuses")
	renderGridCmd.Flags().IntVar(&gridZoom, "zoom", 0, "initial zoom level (default from config)")
	renderCmd.AddCommand(renderGridCmd)
}
