package reconcile

import (
	"context"
	"log"

	"cafesync/internal/model"
	"cafesync/internal/normalize"
	"cafesync/internal/store"
)

// BackfillCoordinates extracts latitude and longitude from each record's map
// link and writes them to every cafe with the same name.
func (r *Reconciler) BackfillCoordinates(ctx context.Context, records []model.RawCafe) Report {
	rep := newReport(FlowCoords)
	rep.Found = len(records)

	for _, raw := range records {
		if raw.Name == "" {
			rep.Skipped++
			continue
		}
		lat, lng, ok := normalize.Coordinates(raw.Link)
		if !ok {
			rep.NoCoords++
			continue
		}

		n, err := r.Store.Update(ctx, model.TableCafes,
			store.Eq{Column: "name", Value: raw.Name},
			store.Row{"latitude": lat, "longitude": lng},
		)
		switch {
		case interrupted(ctx, err):
			log.Printf("[Coords] Interrompido em %q: %v", raw.Name, err)
			rep.Errors++
			rep.finish()
			return *rep
		case err != nil:
			log.Printf("[Coords] Erro (%s) ao atualizar %q: %v", store.KindOf(err), raw.Name, err)
			rep.Errors++
		case n == 0:
			rep.NotFound++
		default:
			rep.Updated++
		}
	}

	return r.done(ctx, rep)
}
