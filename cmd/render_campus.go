package main

import (
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/campus"
	"github.com/masslots/parcelviz/internal/render"
	"github.com/masslots/parcelviz/internal/transit"
)

var campusWithTransit bool

var renderCampusCmd = &cobra.Command{
	Use:   "campus <dataset>",
	Short: "Render the grid choropleth with university campuses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dataset := args[0]

		records, err := loadDataset(ctx, dataset)
		if err != nil {
			return err
		}

		res, err := aggregateDataset(ctx, records, cfg.Grid.CellSizeMeters)
		if err != nil {
			return err
		}

		minV, maxV := valueRange(records)
		m, err := render.BuildGridMap(res, render.GridOptions{
			Zoom:         cfg.Render.Zoom,
			Tiles:        cfg.Render.Tiles,
			CellSize:     cfg.Grid.CellSizeMeters,
			TotalRecords: len(records),
			MinValue:     minV,
			MaxValue:     maxV,
		})
		if err != nil {
			return err
		}

		render.AddCampusOverlay(m, campus.Universities)
		if campusWithTransit {
			stops, err := transit.LoadStops(cfg.Data.GTFSDir)
			if err != nil {
				return err
			}
			render.AddTransitOverlay(m, stops)
		}

		return saveMap(m, outputPath(dataset+"_campus.html"), "campus", dataset, len(records))
	},
}

func init() {
	renderCampusCmd.Flags().BoolVar(&campusWithTransit, "transit", false, "also overlay MBTA rail stops")
	renderCmd.AddCommand(renderCampusCmd)
}
