package imagecheck

import (
	"context"
	"fmt"
	"log"
	"sync"

	"cafesync/internal/model"
	"cafesync/internal/observability"
)

const (
	DefaultWorkers   = 10
	DefaultBatchSize = 50
)

// Files is the region file access the runner needs.
type Files interface {
	Load(key string) ([]model.RawCafe, error)
	Save(key string, cafes []model.RawCafe) error
}

type Runner struct {
	Checker   Checker
	Files     Files
	Workers   int
	BatchSize int
}

type Result struct {
	Region    string
	Pending   int
	Processed int
	Removed   int
	Batches   int
	// Deferred counts cafes left unmarked because a check could not be made.
	Deferred  int
}

type job struct {
	index int
	cafe  model.RawCafe
}

// Run checks every cafe of a region that is not marked images_cleaned yet.
// The file is rewritten after each batch, so an interrupted run resumes where
// it stopped.
func (r *Runner) Run(ctx context.Context, key string) (Result, error) {
	res := Result{Region: key}

	cafes, err := r.Files.Load(key)
	if err != nil {
		return res, err
	}

	var pending []int
	for i, c := range cafes {
		if !c.ImagesCleaned {
			pending = append(pending, i)
		}
	}
	res.Pending = len(pending)
	log.Printf("[Images] %s: %d/%d cafés para verificar", key, len(pending), len(cafes))

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for start := 0; start < len(pending); start += batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		removed, deferred := r.runBatch(ctx, cafes, pending[start:end])
		if err := ctx.Err(); err != nil {
			log.Printf("[Images] %s: interrompido, lote descartado", key)
			return res, err
		}
		res.Removed += removed
		res.Deferred += deferred
		res.Processed += end - start
		res.Batches++

		if err := r.Files.Save(key, cafes); err != nil {
			return res, fmt.Errorf("failed to save progress of %s: %w", key, err)
		}
		log.Printf("[Images] Progresso salvo (%d/%d)", res.Processed, res.Pending)
	}
	return res, nil
}

// runBatch cleans the cafes at the given indexes in parallel and writes each
// result back to its own index. A cafe is marked images_cleaned only when
// every one of its images got a verdict.
func (r *Runner) runBatch(ctx context.Context, cafes []model.RawCafe, indexes []int) (removed, deferred int) {
	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				cleaned, n, err := Clean(ctx, r.Checker, j.cafe)
				if err == nil {
					cleaned.ImagesCleaned = true
				} else {
					log.Printf("[Images] %q fica pendente: %v", j.cafe.Name, err)
				}
				cafes[j.index] = cleaned

				mu.Lock()
				removed += n
				if err != nil {
					deferred++
				}
				mu.Unlock()
			}
		}()
	}

	for _, idx := range indexes {
		jobs <- job{index: idx, cafe: cafes[idx]}
	}
	close(jobs)
	wg.Wait()
	return removed, deferred
}

// Clean drops rejected cafe_images and menu images. Entries without a URL are
// kept as they are, and so is any image the checker could not decide on; the
// first such error is returned so the caller leaves the cafe pending.
func Clean(ctx context.Context, checker Checker, c model.RawCafe) (model.RawCafe, int, error) {
	removed := 0
	var firstErr error
	keep := func(url string) bool {
		ok, err := checker.Keep(ctx, url)
		if err == nil {
			err = ctx.Err()
		}
		switch {
		case err != nil:
			observability.ImagesChecked.WithLabelValues("unknown").Inc()
			if firstErr == nil {
				firstErr = err
			}
			return true
		case ok:
			observability.ImagesChecked.WithLabelValues("kept").Inc()
		default:
			observability.ImagesChecked.WithLabelValues("removed").Inc()
		}
		return ok
	}

	if len(c.CafeImages) > 0 {
		kept := make([]model.RawImage, 0, len(c.CafeImages))
		for _, img := range c.CafeImages {
			if img.URL == "" || keep(img.URL) {
				kept = append(kept, img)
				continue
			}
			removed++
		}
		if len(kept) != len(c.CafeImages) {
			log.Printf("[Images] %q: cafe_images %d -> %d", c.Name, len(c.CafeImages), len(kept))
		}
		c.CafeImages = kept
	}

	if c.Menu != nil && len(c.Menu.Images) > 0 {
		menu := *c.Menu
		kept := make([]string, 0, len(menu.Images))
		for _, u := range menu.Images {
			if u == "" || keep(u) {
				kept = append(kept, u)
				continue
			}
			removed++
		}
		if len(kept) != len(menu.Images) {
			log.Printf("[Images] %q: menu %d -> %d", c.Name, len(menu.Images), len(kept))
		}
		menu.Images = kept
		c.Menu = &menu
	}

	return c, removed, firstErr
}
