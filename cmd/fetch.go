package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download source datasets",
}

var fetchParcelsCmd = &cobra.Command{
	Use:   "parcels <url>",
	Short: "Download and extract a MassGIS parcel shapefile archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rawURL := args[0]

		client := fetch.NewClient(fetch.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		if err := os.MkdirAll(cfg.Fetch.CacheDir, 0o755); err != nil {
			return eris.Wrapf(err, "fetch: create cache dir %s", cfg.Fetch.CacheDir)
		}

		zipPath := filepath.Join(cfg.Fetch.CacheDir, filepath.Base(rawURL))
		if _, err := client.DownloadToFile(ctx, rawURL, zipPath); err != nil {
			return err
		}

		destDir := zipPath[:len(zipPath)-len(filepath.Ext(zipPath))]
		extracted, err := fetch.ExtractZIP(zipPath, destDir)
		if err != nil {
			return err
		}
		shpPath, err := fetch.FindShapefile(extracted)
		if err != nil {
			return err
		}

		zap.L().Info("fetch: parcel archive ready",
			zap.String("shapefile", shpPath),
			zap.Int("files", len(extracted)),
		)
		return nil
	},
}

var fetchGTFSCmd = &cobra.Command{
	Use:   "gtfs",
	Short: "Download and extract the MBTA GTFS feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		client := fetch.NewClient(fetch.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		if err := os.MkdirAll(cfg.Fetch.CacheDir, 0o755); err != nil {
			return eris.Wrapf(err, "fetch: create cache dir %s", cfg.Fetch.CacheDir)
		}

		zipPath := filepath.Join(cfg.Fetch.CacheDir, "MBTA_GTFS.zip")
		if _, err := client.DownloadToFile(ctx, fetch.MBTAGTFSURL, zipPath); err != nil {
			return err
		}

		extracted, err := fetch.ExtractZIP(zipPath, cfg.Data.GTFSDir)
		if err != nil {
			return err
		}

		zap.L().Info("fetch: GTFS feed ready",
			zap.String("dir", cfg.Data.GTFSDir),
			zap.Int("files", len(extracted)),
		)
		return nil
	},
}

func init() {
	fetchCmd.AddCommand(fetchParcelsCmd)
	fetchCmd.AddCommand(fetchGTFSCmd)
	rootCmd.AddCommand(fetchCmd)
}
