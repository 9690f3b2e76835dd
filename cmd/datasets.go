package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/masslots/parcelviz/internal/store"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Inspect imported parcel datasets",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported datasets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		datasets, err := st.ListDatasets(ctx)
		if err != nil {
			return eris.Wrap(err, "datasets list")
		}
		if len(datasets) == 0 {
			fmt.Fprintln(os.Stderr, "No datasets imported.")
			return nil
		}

		formatDatasets(os.Stdout, datasets)
		return nil
	},
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a dataset and its parcels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteDataset(ctx, args[0]); err != nil {
			return eris.Wrap(err, "datasets delete")
		}
		fmt.Fprintf(os.Stdout, "Deleted dataset %q.\n", args[0])
		return nil
	},
}

func init() {
	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
	rootCmd.AddCommand(datasetsCmd)
}

// formatDatasets writes a tabular dataset listing to w.
func formatDatasets(out io.Writer, datasets []store.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tRECORDS\tVALUE_FIELD\tIMPORTED\tSOURCE")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----------\t--------\t------")
	for _, ds := range datasets {
		source := ds.Source
		if len(source) > 40 {
			source = "..." + source[len(source)-37:]
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			ds.Name, ds.RecordCount, ds.ValueField,
			ds.ImportedAt.Format("2006-01-02 15:04"), source)
	}
	_ = w.Flush()
}
