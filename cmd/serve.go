package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered maps and cell statistics over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/datasets", func(w http.ResponseWriter, req *http.Request) {
			datasets, err := st.ListDatasets(req.Context())
			if err != nil {
				zap.L().Error("serve: list datasets", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list datasets"})
				return
			}
			if datasets == nil {
				datasets = []store.Dataset{}
			}
			writeJSON(w, http.StatusOK, datasets)
		})

		r.Get("/api/cells", func(w http.ResponseWriter, req *http.Request) {
			handleCells(w, req, st)
		})

		// Rendered maps are served as static files.
		r.Handle("/maps/*", http.StripPrefix("/maps/",
			http.FileServer(http.Dir(cfg.Render.OutputDir))))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("maps_dir", cfg.Render.OutputDir),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// handleCells aggregates a dataset on demand and returns the populated
// cell statistics.
func handleCells(w http.ResponseWriter, req *http.Request, st store.Store) {
	name := req.URL.Query().Get("dataset")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dataset is required"})
		return
	}

	side := cfg.Grid.CellSizeMeters
	if raw := req.URL.Query().Get("cell_size"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cell_size"})
			return
		}
		side = parsed
	}

	records, err := loadDatasetFrom(req.Context(), st, name)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dataset not found"})
			return
		}
		zap.L().Error("serve: load dataset", zap.String("dataset", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load dataset"})
		return
	}

	res, err := aggregateDataset(req.Context(), records, side)
	if err != nil {
		zap.L().Error("serve: aggregate", zap.String("dataset", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "aggregate dataset"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dataset":    name,
		"cell_size":  side,
		"rows":       res.Partition.Rows,
		"cols":       res.Partition.Cols,
		"thresholds": res.Thresholds,
		"cells":      res.Stats,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
