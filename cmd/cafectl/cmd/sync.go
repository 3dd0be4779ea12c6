package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"cafesync/internal/model"
	"cafesync/internal/reconcile"
	"cafesync/internal/report"
)

func init() {
	rootCmd.AddCommand(syncCmd, detailsCmd, coordsCmd, pruneImagesCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Insert new cafes and refresh rating and review count of known ones.",
	Run: func(cmd *cobra.Command, args []string) {
		runFlow(cmd, func(rec *reconcile.Reconciler, cafes []model.RawCafe) (reconcile.Report, error) {
			return rec.Sync(cmd.Context(), cafes)
		})
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Insert opening hours, menu images, reviews and menu links of known cafes.",
	Run: func(cmd *cobra.Command, args []string) {
		runFlow(cmd, func(rec *reconcile.Reconciler, cafes []model.RawCafe) (reconcile.Report, error) {
			return rec.SyncDetails(cmd.Context(), cafes)
		})
	},
}

var coordsCmd = &cobra.Command{
	Use:   "coords",
	Short: "Fill latitude and longitude from each cafe's map link.",
	Run: func(cmd *cobra.Command, args []string) {
		runFlow(cmd, func(rec *reconcile.Reconciler, cafes []model.RawCafe) (reconcile.Report, error) {
			return rec.BackfillCoordinates(cmd.Context(), cafes), nil
		})
	},
}

var pruneImagesCmd = &cobra.Command{
	Use:   "prune-images",
	Short: "Delete cafe_images rows whose URL is no longer in the files.",
	Run: func(cmd *cobra.Command, args []string) {
		runFlow(cmd, func(rec *reconcile.Reconciler, cafes []model.RawCafe) (reconcile.Report, error) {
			return rec.PruneImages(cmd.Context(), cafes)
		})
	},
}

func runFlow(cmd *cobra.Command, flow func(*reconcile.Reconciler, []model.RawCafe) (reconcile.Report, error)) {
	cafes := regions().LoadAll().All()
	log.Printf("Total de cafés carregados: %d", len(cafes))

	rec, cleanup := reconciler(cmd.Context())
	defer cleanup()

	rep, err := flow(rec, cafes)
	if err != nil {
		log.Fatalf("Erro na sincronização: %v", err)
	}
	report.Run(os.Stdout, rep)
}
