package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"cafesync/internal/imagecheck"
)

var (
	imageWorkers int
	imageTimeout time.Duration
)

func init() {
	checkImagesCmd.Flags().IntVar(&imageWorkers, "workers", 0, "parallel checks (default $WORKER_COUNT)")
	checkImagesCmd.Flags().DurationVar(&imageTimeout, "timeout", 5*time.Second, "timeout per image request")
	rootCmd.AddCommand(checkImagesCmd)
}

var checkImagesCmd = &cobra.Command{
	Use:   "check-images [region...]",
	Short: "Drop unreachable images from the region files (all regions when none given).",
	Run: func(cmd *cobra.Command, args []string) {
		rs := regions()
		keys := args
		if len(keys) == 0 {
			keys = rs.Keys()
		}

		workers := imageWorkers
		if workers <= 0 {
			workers = cfg.WorkerCount
		}
		runner := &imagecheck.Runner{
			Checker:   imagecheck.NewHTTPChecker(imageTimeout),
			Files:     rs,
			Workers:   workers,
			BatchSize: imagecheck.DefaultBatchSize,
		}

		for _, key := range keys {
			res, err := runner.Run(cmd.Context(), key)
			if err != nil {
				log.Printf("[Images] Erro em %s: %v", key, err)
				if cmd.Context().Err() != nil {
					return
				}
				continue
			}
			log.Printf("[Images] %s: %d cafés verificados, %d imagens removidas, %d pendentes", key, res.Processed, res.Removed, res.Deferred)
		}
	},
}
