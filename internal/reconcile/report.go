package reconcile

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"cafesync/internal/observability"
)

// Nomes dos fluxos, usados nos logs, nas métricas e no histórico.
const (
	FlowSync    = "sync"
	FlowDetails = "details"
	FlowCoords  = "coords"
	FlowPrune   = "prune-images"
)

// Report holds the aggregate counts of one run. Fields that do not apply to a
// flow stay zero.
type Report struct {
	Flow      string
	StartedAt time.Time
	Elapsed   time.Duration

	Found    int // registros de entrada
	Inserted int
	Updated  int
	Skipped  int
	Errors   int

	NotFound int // coords: nome sem linha remota
	NoCoords int // coords: link sem coordenadas
	Deleted  int // prune-images

	// Children conta linhas inseridas por tabela filha (details).
	Children map[string]int
}

func newReport(flow string) *Report {
	return &Report{Flow: flow, StartedAt: time.Now(), Children: map[string]int{}}
}

// Synced is what the HTTP endpoint reports as total_synced.
func (r Report) Synced() int {
	return r.Inserted + r.Updated
}

func (r Report) Counts() map[string]int {
	counts := map[string]int{
		"found":     r.Found,
		"inserted":  r.Inserted,
		"updated":   r.Updated,
		"skipped":   r.Skipped,
		"errors":    r.Errors,
		"not_found": r.NotFound,
		"no_coords": r.NoCoords,
		"deleted":   r.Deleted,
	}
	for table, n := range r.Children {
		counts["rows_"+table] = n
	}
	return counts
}

func (r Report) String() string {
	counts := r.Counts()
	keys := make([]string, 0, len(counts))
	for k, v := range counts {
		if v != 0 || k == "found" || k == "errors" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return fmt.Sprintf("%s: %s (%s)", r.Flow, strings.Join(parts, " "), r.Elapsed.Round(time.Millisecond))
}

// finish fecha o relatório: tempo total, log e métricas.
func (r *Report) finish() {
	r.Elapsed = time.Since(r.StartedAt)
	log.Printf("[Sync] Execução finalizada %s", r)
	observability.ObserveRun(r.Flow, r.Counts(), r.Elapsed)
}
