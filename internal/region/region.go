// Package region owns the per-region JSON files the scraper writes.
package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cafesync/internal/config"
	"cafesync/internal/model"
)

type Region struct {
	Key      string
	Name     string
	File     string
	Keywords []string
}

// Store reads and rewrites region files under a data directory.
// Files are always rewritten wholesale.
type Store struct {
	Dir        string
	regions    []Region
	defaultKey string
}

func NewStore(dir string, cfg config.RegionsFile) *Store {
	s := &Store{Dir: dir, defaultKey: cfg.Default}
	for _, r := range cfg.Regions {
		s.regions = append(s.regions, Region{
			Key:      r.Key,
			Name:     r.Name,
			File:     r.File,
			Keywords: r.Keywords,
		})
	}
	if s.defaultKey == "" && len(s.regions) > 0 {
		s.defaultKey = s.regions[0].Key
	}
	return s
}

// Regions returns the registry in configuration order.
func (s *Store) Regions() []Region {
	return append([]Region(nil), s.regions...)
}

func (s *Store) Keys() []string {
	keys := make([]string, len(s.regions))
	for i, r := range s.regions {
		keys[i] = r.Key
	}
	return keys
}

func (s *Store) Lookup(key string) (Region, bool) {
	for _, r := range s.regions {
		if r.Key == key {
			return r, true
		}
	}
	return Region{}, false
}

func (s *Store) path(r Region) string {
	if filepath.IsAbs(r.File) {
		return r.File
	}
	return filepath.Join(s.Dir, r.File)
}

// Load reads one region file. A missing file is an empty region.
func (s *Store) Load(key string) ([]model.RawCafe, error) {
	r, ok := s.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown region %q", key)
	}

	b, err := os.ReadFile(s.path(r))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.File, err)
	}

	var cafes []model.RawCafe
	if err := json.Unmarshal(b, &cafes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.File, err)
	}
	return cafes, nil
}

// Save rewrites the whole file through a temp file + rename.
func (s *Store) Save(key string, cafes []model.RawCafe) error {
	r, ok := s.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown region %q", key)
	}
	if cafes == nil {
		cafes = []model.RawCafe{}
	}

	b, err := json.MarshalIndent(cafes, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.File, err)
	}

	path := s.path(r)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.File, err)
	}
	return nil
}

// Dataset é o conteúdo de todas as regiões, na ordem do registry.
type Dataset struct {
	Regions []Region
	Cafes   map[string][]model.RawCafe
}

// All concatenates every region in registry order.
func (d Dataset) All() []model.RawCafe {
	var all []model.RawCafe
	for _, r := range d.Regions {
		all = append(all, d.Cafes[r.Key]...)
	}
	return all
}

// LoadAll reads every region. Unreadable files are logged and treated as empty.
func (s *Store) LoadAll() Dataset {
	ds := Dataset{Regions: s.Regions(), Cafes: make(map[string][]model.RawCafe, len(s.regions))}
	for _, r := range s.regions {
		cafes, err := s.Load(r.Key)
		if err != nil {
			log.Printf("[Region] Erro ao carregar %s: %v", r.File, err)
			cafes = nil
		}
		ds.Cafes[r.Key] = cafes
		log.Printf("[Region] %d cafés carregados de %s", len(cafes), r.Key)
	}
	return ds
}

// Route picks the region whose keyword appears in the address; default otherwise.
func (s *Store) Route(address string) string {
	addr := strings.ToLower(address)
	if addr == "" {
		return s.defaultKey
	}
	for _, r := range s.regions {
		for _, kw := range r.Keywords {
			if kw != "" && strings.Contains(addr, strings.ToLower(kw)) {
				return r.Key
			}
		}
	}
	return s.defaultKey
}

// Exists reports whether a cafe with the same trimmed, lower-cased name is
// already in the region file.
func (s *Store) Exists(key, name string) (bool, error) {
	cafes, err := s.Load(key)
	if err != nil {
		return false, err
	}
	want := normalizeName(name)
	for _, c := range cafes {
		if normalizeName(c.Name) == want {
			return true, nil
		}
	}
	return false, nil
}

// Append routes a record by address and appends it unless a cafe with the
// same name, compared as in Exists, is already present. It returns the region
// key and whether the file changed.
func (s *Store) Append(c model.RawCafe) (string, bool, error) {
	key := s.Route(c.Address)
	cafes, err := s.Load(key)
	if err != nil {
		return key, false, err
	}
	want := normalizeName(c.Name)
	for _, existing := range cafes {
		if normalizeName(existing.Name) == want {
			return key, false, nil
		}
	}
	if err := s.Save(key, append(cafes, c)); err != nil {
		return key, false, err
	}
	return key, true, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
