package reconcile

import (
	"context"
	"fmt"
	"log"

	"cafesync/internal/model"
	"cafesync/internal/normalize"
	"cafesync/internal/store"
)

type childRows struct {
	hours   []store.Row
	images  []store.Row
	reviews []store.Row
	menus   []store.Row
	stats   []Update
}

// SyncDetails writes opening hours, menu images, reviews and the menu link of
// every cafe already in the remote store, then refreshes rating and review
// count by id. Child rows are only ever inserted, so a second run duplicates
// them.
func (r *Reconciler) SyncDetails(ctx context.Context, records []model.RawCafe) (Report, error) {
	rep := newReport(FlowDetails)
	rep.Found = len(records)

	index, err := FetchNameIndex(ctx, r.Store)
	if err != nil {
		return *rep, err
	}
	log.Printf("[Details] %d cafés mapeados", len(index))

	var rows childRows
	for _, raw := range records {
		id, ok := index[raw.Name]
		if raw.Name == "" || !ok {
			rep.Skipped++
			continue
		}

		for _, h := range normalize.HoursFor(id, raw.OpeningHours) {
			rows.hours = append(rows.hours, h.Row())
		}
		for _, img := range normalize.Images(id, raw.Menu) {
			rows.images = append(rows.images, img.Row())
		}
		for _, rv := range normalize.Reviews(id, raw.CustomerReviews) {
			rows.reviews = append(rows.reviews, rv.Row())
		}
		if m, ok := normalize.MenuLink(id, raw.Menu); ok {
			rows.menus = append(rows.menus, m.Row())
		}
		rows.stats = append(rows.stats, Update{ID: id, Cafe: normalize.Cafe(raw)})
	}
	log.Printf("[Details] Preparados %d horários, %d imagens, %d reviews, %d menus",
		len(rows.hours), len(rows.images), len(rows.reviews), len(rows.menus))

	children := []struct {
		table string
		rows  []store.Row
	}{
		{model.TableOperatingHours, rows.hours},
		{model.TableCafeImages, rows.images},
		{model.TableReviews, rows.reviews},
		{model.TableCafeMenus, rows.menus},
	}
	for _, ch := range children {
		if err := r.insertChunks(ctx, ch.table, ch.rows, rep); err != nil {
			rep.finish()
			return *rep, err
		}
	}

	log.Printf("[Details] Atualizando estatísticas de %d cafés", len(rows.stats))
	if err := r.Apply(ctx, Plan{Updates: rows.stats}, rep); err != nil {
		rep.finish()
		return *rep, err
	}

	return r.done(ctx, rep), nil
}

func (r *Reconciler) insertChunks(ctx context.Context, table string, rows []store.Row, rep *Report) error {
	if len(rows) == 0 {
		return nil
	}
	for _, chunk := range store.Chunks(rows, r.chunkSize()) {
		if err := r.Store.Insert(ctx, table, chunk); err != nil {
			log.Printf("[Details] Erro (%s) ao inserir %d linhas em %s: %v", store.KindOf(err), len(chunk), table, err)
			rep.Errors += len(chunk)
			if interrupted(ctx, err) {
				return fmt.Errorf("details interrupted at %s: %w", table, err)
			}
			continue
		}
		rep.Children[table] += len(chunk)
	}
	log.Printf("[Details] %s: %d/%d linhas", table, rep.Children[table], len(rows))
	return nil
}
