package cmd

import (
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"cafesync/internal/catalog"
	"cafesync/internal/report"
)

var (
	dupesThreshold float64
	runsLimit      int
)

func init() {
	dupesCmd.Flags().Float64Var(&dupesThreshold, "threshold", 0.92, "minimum Jaro-Winkler similarity")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(statsCmd, dupesCmd, runsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cafes per region.",
	Run: func(cmd *cobra.Command, args []string) {
		snap := catalog.Build(regions().LoadAll())
		report.Stats(os.Stdout, snap.Counts())
	},
}

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "List cafes with identical or near-identical names. Nothing is merged.",
	Run: func(cmd *cobra.Command, args []string) {
		pairs := report.SimilarNames(regions().LoadAll(), dupesThreshold)
		report.Dupes(os.Stdout, pairs)
		log.Printf("%d pares encontrados", len(pairs))
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the latest sync runs recorded in sync_runs.",
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL não configurado")
		}
		repo := runRepository(cmd.Context())
		if repo == nil {
			os.Exit(1)
		}
		defer repo.DB.Close()

		runs, err := repo.List(cmd.Context(), runsLimit)
		if err != nil {
			log.Fatalf("Erro ao listar execuções: %v", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Started", "Flow", "Duration", "Counts"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.StartedAt.Format("2006-01-02 15:04:05"), r.Flow, r.DurationMs, r.Counts})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
