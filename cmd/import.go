package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/fetch"
	"github.com/masslots/parcelviz/internal/parcel"
	"github.com/masslots/parcelviz/internal/store"
)

var (
	importName       string
	importValueField string
	importIDField    string
)

var importCmd = &cobra.Command{
	Use:   "import <shapefile-or-zip>",
	Short: "Import a parcel shapefile into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		valueField := importValueField
		if valueField == "" {
			valueField = cfg.Data.ValueField
		}
		idField := importIDField
		if idField == "" {
			idField = cfg.Data.IDField
		}

		shpPath := path
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			tmp, err := os.MkdirTemp("", "parcelviz-import-*")
			if err != nil {
				return eris.Wrap(err, "import: temp dir")
			}
			defer os.RemoveAll(tmp) //nolint:errcheck

			extracted, err := fetch.ExtractZIP(path, tmp)
			if err != nil {
				return err
			}
			shpPath, err = fetch.FindShapefile(extracted)
			if err != nil {
				return err
			}
		}

		records, err := parcel.LoadShapefile(shpPath, parcel.LoadOptions{
			ValueField: valueField,
			IDField:    idField,
		})
		if err != nil {
			return err
		}
		records = parcel.FilterValid(records)
		if len(records) == 0 {
			return eris.Errorf("import: %s contains no usable parcels", path)
		}

		name := importName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ds, err := st.SaveDataset(ctx, store.Dataset{
			Name:       name,
			Source:     path,
			ValueField: valueField,
		}, records)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("dataset", ds.Name),
			zap.String("id", ds.ID),
			zap.Int("records", ds.RecordCount),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file basename)")
	importCmd.Flags().StringVar(&importValueField, "value-field", "", "attribute holding the assessed value (default from config)")
	importCmd.Flags().StringVar(&importIDField, "id-field", "", "attribute holding the parcel id (default from config)")
	rootCmd.AddCommand(importCmd)
}
