package catalog

import (
	"fmt"
	"log"
	"sync/atomic"

	"cafesync/internal/region"
)

// Loader builds a fresh snapshot.
type Loader func() (*Snapshot, error)

// FromRegions loads every region file of rs on each call.
func FromRegions(rs *region.Store) Loader {
	return func() (*Snapshot, error) {
		return Build(rs.LoadAll()), nil
	}
}

// Holder publishes the current snapshot. Readers take one snapshot per
// request and never see a half-built one.
type Holder struct {
	current atomic.Pointer[Snapshot]
	load    Loader
}

func NewHolder(load Loader) (*Holder, error) {
	h := &Holder{load: load}
	if _, err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload builds a new snapshot and swaps it in. On failure the previous
// snapshot stays published.
func (h *Holder) Reload() (*Snapshot, error) {
	s, err := h.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	h.current.Store(s)
	log.Printf("[Catalog] %d cafés carregados", s.Len())
	return s, nil
}
