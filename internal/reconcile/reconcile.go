// Package reconcile writes normalized cafe records into the remote store,
// keyed by exact cafe name.
package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cafesync/internal/model"
	"cafesync/internal/normalize"
	"cafesync/internal/store"
)

const (
	IndexPageSize = 1000
	InsertChunk   = 50
)

// NameIndex maps cafe name to remote id.
type NameIndex map[string]string

// Recorder persists finished reports. Failures are logged only.
type Recorder interface {
	Record(ctx context.Context, r Report) error
}

type Reconciler struct {
	Store     store.Store
	ChunkSize int
	Recorder  Recorder
}

func New(s store.Store) *Reconciler {
	return &Reconciler{Store: s, ChunkSize: InsertChunk}
}

// FetchNameIndex reads id and name of every remote cafe, a page at a time.
func FetchNameIndex(ctx context.Context, s store.Store) (NameIndex, error) {
	rows, err := store.SelectAll(ctx, s, model.TableCafes, store.Query{
		Columns: []string{"id", "name"},
		OrderBy: "id",
	}, IndexPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cafe names: %w", err)
	}

	index := make(NameIndex, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		if name == "" {
			continue
		}
		index[name] = fmt.Sprint(row["id"])
	}
	return index, nil
}

type Update struct {
	ID   string
	Cafe model.Cafe
}

// Plan is the insert-vs-update decision for one batch.
type Plan struct {
	Inserts []model.Cafe
	Updates []Update
	Skipped int
}

// Plan decides per record: known names are updated by id, unknown names are
// queued for insert once.
func (r *Reconciler) Plan(records []model.RawCafe, index NameIndex) Plan {
	var p Plan
	seen := make(map[string]bool)

	for _, raw := range records {
		cafe := normalize.Cafe(raw)
		if strings.TrimSpace(cafe.Name) == "" {
			p.Skipped++
			continue
		}

		if id, ok := index[cafe.Name]; ok {
			p.Updates = append(p.Updates, Update{ID: id, Cafe: cafe})
			continue
		}
		if seen[cafe.Name] {
			p.Skipped++
			continue
		}
		seen[cafe.Name] = true
		p.Inserts = append(p.Inserts, cafe)
	}
	return p
}

// Apply executes a plan. A failed chunk or update is logged and counted and
// the remaining writes still run, unless the context is done and the store is
// unreachable: then Apply stops and returns the failure.
func (r *Reconciler) Apply(ctx context.Context, p Plan, rep *Report) error {
	rep.Skipped += p.Skipped

	for _, chunk := range store.Chunks(p.Inserts, r.chunkSize()) {
		rows := make([]store.Row, len(chunk))
		for i, c := range chunk {
			rows[i] = c.Row()
		}
		if err := r.Store.Insert(ctx, model.TableCafes, rows); err != nil {
			log.Printf("[Sync] Erro (%s) ao inserir lote de %d cafés: %v", store.KindOf(err), len(chunk), err)
			rep.Errors += len(chunk)
			if interrupted(ctx, err) {
				return fmt.Errorf("sync interrupted: %w", err)
			}
			continue
		}
		rep.Inserted += len(chunk)
	}

	for _, u := range p.Updates {
		if _, err := r.Store.Update(ctx, model.TableCafes, store.Eq{Column: "id", Value: u.ID}, u.Cafe.StatsRow()); err != nil {
			log.Printf("[Sync] Erro (%s) ao atualizar %q: %v", store.KindOf(err), u.Cafe.Name, err)
			rep.Errors++
			if interrupted(ctx, err) {
				return fmt.Errorf("sync interrupted: %w", err)
			}
			continue
		}
		rep.Updated++
	}
	return nil
}

// interrupted reports whether a failed write ends the run: the context is
// done and the store could not be reached.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && store.KindOf(err) == store.KindTransport
}

// Sync reconciles records against the cafes table. It fails when the name
// index cannot be fetched or the run is interrupted; the partial report is
// returned either way.
func (r *Reconciler) Sync(ctx context.Context, records []model.RawCafe) (Report, error) {
	rep := newReport(FlowSync)
	rep.Found = len(records)

	index, err := FetchNameIndex(ctx, r.Store)
	if err != nil {
		return *rep, err
	}
	log.Printf("[Sync] %d cafés já existem no banco", len(index))

	plan := r.Plan(records, index)
	log.Printf("[Sync] %d para inserir, %d para atualizar", len(plan.Inserts), len(plan.Updates))
	if err := r.Apply(ctx, plan, rep); err != nil {
		rep.finish()
		return *rep, err
	}

	return r.done(ctx, rep), nil
}

func (r *Reconciler) chunkSize() int {
	if r.ChunkSize <= 0 {
		return InsertChunk
	}
	return r.ChunkSize
}

func (r *Reconciler) done(ctx context.Context, rep *Report) Report {
	rep.finish()
	if r.Recorder != nil {
		if err := r.Recorder.Record(ctx, *rep); err != nil {
			log.Printf("[Sync] Erro ao salvar histórico: %v", err)
		}
	}
	return *rep
}
