package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cafesync/internal/config"
	"cafesync/internal/db"
	"cafesync/internal/observability"
	"cafesync/internal/reconcile"
	"cafesync/internal/region"
	"cafesync/internal/repository"
	"cafesync/internal/store"
)

var (
	dataDir     string
	backend     string
	dryRun      bool
	withMetrics bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cafectl",
	Short: "cafectl syncs the scraped cafe files with the cafe database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if backend != "" {
			cfg.StoreBackend = backend
		}
		if dryRun {
			cfg.StoreBackend = config.BackendMemory
		}
		if withMetrics {
			observability.Start(cfg.MetricsPort)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory with the cafe_data_*.json files (default $DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: postgrest, postgres, local or memory (default $STORE_BACKEND)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "write to an in-memory store instead of the database")
	rootCmd.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "expose /metrics on $METRICS_PORT while running")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func regions() *region.Store {
	rf, err := config.ReadRegions(cfg.RegionsFile)
	if err != nil {
		log.Fatalf("Erro ao ler regiões: %v", err)
	}
	return region.NewStore(cfg.DataDir, rf)
}

// reconciler opens the configured store and, when DATABASE_URL is set,
// records each run in sync_runs.
func reconciler(ctx context.Context) (*reconcile.Reconciler, func()) {
	s, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Erro ao abrir store: %v", err)
	}
	rec := reconcile.New(s)
	cleanup := closeStore

	if cfg.DatabaseURL != "" && cfg.StoreBackend != config.BackendMemory {
		if runs := runRepository(ctx); runs != nil {
			rec.Recorder = runs
			cleanup = func() {
				closeStore()
				runs.DB.Close()
			}
		}
	}
	return rec, cleanup
}

func runRepository(ctx context.Context) *repository.RunRepository {
	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[Sync] Histórico desativado: %v", err)
		return nil
	}
	runs := &repository.RunRepository{DB: conn}
	if err := runs.EnsureSchema(ctx); err != nil {
		log.Printf("[Sync] Histórico desativado: %v", err)
		conn.Close()
		return nil
	}
	return runs
}
