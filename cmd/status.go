package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/render"
	"github.com/masslots/parcelviz/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize imported datasets and rendered maps",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		datasets, err := st.ListDatasets(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		manifest, err := render.LoadManifest(filepath.Join(cfg.Render.OutputDir, "manifest.yaml"))
		if err != nil {
			return err
		}

		formatStatus(os.Stdout, datasets, manifest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func formatStatus(out io.Writer, datasets []store.Dataset, manifest *render.Manifest) {
	total := 0
	for _, ds := range datasets {
		total += ds.RecordCount
	}
	fmt.Fprintf(out, "Datasets: %d (%d parcels)\n", len(datasets), total)
	for _, ds := range datasets {
		fmt.Fprintf(out, "  %-20s %8d parcels  imported %s\n",
			ds.Name, ds.RecordCount, ds.ImportedAt.Format("2006-01-02 15:04"))
	}

	fmt.Fprintf(out, "Rendered maps: %d\n", len(manifest.Artifacts))
	for _, a := range manifest.Artifacts {
		fmt.Fprintf(out, "  %-30s %-7s %s\n", a.Path, a.Kind, a.CreatedAt.Format("2006-01-02 15:04"))
	}
}
