package reconcile

import (
	"context"
	"fmt"
	"log"

	"cafesync/internal/model"
	"cafesync/internal/store"
)

const (
	ImagePageSize = 1000
	DeleteChunk   = 100
)

// PruneImages deletes cafe_images rows whose URL no longer appears in any
// record, either under cafe_images or under the menu images.
func (r *Reconciler) PruneImages(ctx context.Context, records []model.RawCafe) (Report, error) {
	rep := newReport(FlowPrune)
	rep.Found = len(records)

	kept := make(map[string]bool)
	for _, raw := range records {
		for _, u := range raw.AllImageURLs() {
			kept[u] = true
		}
	}
	log.Printf("[Images] %d imagens únicas nos arquivos", len(kept))

	rows, err := store.SelectAll(ctx, r.Store, model.TableCafeImages, store.Query{
		Columns: []string{"id", "image_url"},
		OrderBy: "id",
	}, ImagePageSize)
	if err != nil {
		return *rep, fmt.Errorf("failed to fetch cafe images: %w", err)
	}
	log.Printf("[Images] %d imagens no banco", len(rows))

	var orphans []any
	for _, row := range rows {
		url, _ := row["image_url"].(string)
		if !kept[url] {
			orphans = append(orphans, row["id"])
		}
	}
	rep.Skipped = len(rows) - len(orphans)
	if len(orphans) == 0 {
		log.Println("[Images] Nenhuma imagem para remover")
		return r.done(ctx, rep), nil
	}

	for _, chunk := range store.Chunks(orphans, DeleteChunk) {
		n, err := r.Store.Delete(ctx, model.TableCafeImages, "id", chunk)
		if err != nil {
			log.Printf("[Images] Erro (%s) ao remover lote: %v", store.KindOf(err), err)
			rep.Errors += len(chunk)
			if interrupted(ctx, err) {
				rep.finish()
				return *rep, fmt.Errorf("prune interrupted: %w", err)
			}
			continue
		}
		rep.Deleted += n
	}

	return r.done(ctx, rep), nil
}
