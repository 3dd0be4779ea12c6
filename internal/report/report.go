// Package report renders CLI tables and the near-duplicate name report.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"

	"cafesync/internal/catalog"
	"cafesync/internal/reconcile"
	"cafesync/internal/region"
)

func Stats(w io.Writer, counts []catalog.RegionCount) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Region", "Name", "Cafes"})

	total := 0
	for _, rc := range counts {
		t.AppendRow(table.Row{rc.Key, rc.Name, rc.Count})
		total += rc.Count
	}
	t.AppendFooter(table.Row{"total", "", total})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Run prints the non-zero counts of a finished run.
func Run(w io.Writer, rep reconcile.Report) {
	counts := rep.Counts()
	keys := make([]string, 0, len(counts))
	for k, v := range counts {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s (%s)", rep.Flow, rep.Elapsed.Round(time.Millisecond)))
	t.AppendHeader(table.Row{"Count", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, counts[k]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Pair is two records whose names look alike. Same-name pairs from
// different regions end up as one remote row.
type Pair struct {
	Left, LeftRegion   string
	Right, RightRegion string
	Score              float64
}

type entry struct {
	name, norm, region string
}

// SimilarNames compares every pair of distinct records and returns those with
// a Jaro-Winkler score at or above threshold, best first. Identical names in
// the same region are skipped.
func SimilarNames(ds region.Dataset, threshold float64) []Pair {
	var entries []entry
	for _, r := range ds.Regions {
		for _, c := range ds.Cafes[r.Key] {
			norm := strings.ToLower(strings.TrimSpace(c.Name))
			if norm == "" {
				continue
			}
			entries = append(entries, entry{name: c.Name, norm: norm, region: r.Key})
		}
	}

	var pairs []Pair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.norm == b.norm && a.region == b.region {
				continue
			}
			score := matchr.JaroWinkler(a.norm, b.norm, false)
			if score < threshold {
				continue
			}
			pairs = append(pairs, Pair{
				Left: a.name, LeftRegion: a.region,
				Right: b.name, RightRegion: b.region,
				Score: score,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs
}

func Dupes(w io.Writer, pairs []Pair) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Cafe", "Region", "Similar to", "Region", "Score"})
	for _, p := range pairs {
		t.AppendRow(table.Row{p.Left, p.LeftRegion, p.Right, p.RightRegion, fmt.Sprintf("%.3f", p.Score)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
