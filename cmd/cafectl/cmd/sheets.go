package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"cafesync/internal/sheets"
)

var (
	consolidateOut  string
	consolidateGIDs []string
)

func init() {
	consolidateCmd.Flags().StringVarP(&consolidateOut, "out", "o", "consolidated_list.json", "output file")
	consolidateCmd.Flags().StringSliceVar(&consolidateGIDs, "gid", nil, "extra sheet gids to download (added to $SHEET_GIDS)")
	rootCmd.AddCommand(consolidateCmd, importCmd)
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Download every tab of the cafe spreadsheet and write one deduplicated list.",
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.SheetID == "" {
			log.Fatal("SHEET_ID não configurado")
		}

		client := sheets.NewClient(cfg.SheetID)
		res, err := client.Consolidate(cmd.Context(), append(cfg.SheetGIDs, consolidateGIDs...))
		if err != nil {
			log.Fatalf("Erro ao consolidar planilha: %v", err)
		}
		log.Printf("%d abas baixadas, %d linhas, %d únicas (%d duplicadas removidas)",
			res.Downloaded, res.Rows, len(res.Entries), res.Duplicates)

		if err := sheets.WriteJSON(consolidateOut, res.Entries); err != nil {
			log.Fatalf("Erro ao salvar %s: %v", consolidateOut, err)
		}
		log.Printf("Salvo em %s", consolidateOut)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <consolidated.json>",
	Short: "Append consolidated entries to the region files, routed by address.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := sheets.ReadJSON(args[0])
		if err != nil {
			log.Fatalf("Erro ao ler %s: %v", args[0], err)
		}

		rs := regions()
		added := map[string]int{}
		skipped := 0
		for _, e := range entries {
			key, ok, err := rs.Append(e.Raw())
			if err != nil {
				log.Printf("Erro ao gravar %q em %s: %v", e.Name, key, err)
				continue
			}
			if !ok {
				skipped++
				continue
			}
			added[key]++
		}

		for _, key := range rs.Keys() {
			log.Printf("%s: %d novos", key, added[key])
		}
		log.Printf("%d já existentes", skipped)
	},
}
