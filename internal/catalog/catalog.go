// Package catalog holds the read-only view of the region files served by the
// query API. A Snapshot never changes after Build; reloads swap in a new one.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cafesync/internal/model"
	"cafesync/internal/region"
)

// Record is a raw cafe tagged with the region it was loaded from.
type Record struct {
	Cafe       model.RawCafe
	RegionID   string
	RegionName string
}

// MarshalJSON writes the raw record's keys plus region_id and region_name.
func (r Record) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(r.Cafe)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	fields["region_id"], _ = json.Marshal(r.RegionID)
	fields["region_name"], _ = json.Marshal(r.RegionName)
	return json.Marshal(fields)
}

type RegionCount struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Snapshot struct {
	regions  []region.Region
	all      []Record
	byRegion map[string][]Record
	loadedAt time.Time
}

func Build(ds region.Dataset) *Snapshot {
	s := &Snapshot{
		regions:  ds.Regions,
		byRegion: make(map[string][]Record, len(ds.Regions)),
		loadedAt: time.Now(),
	}
	for _, r := range ds.Regions {
		records := make([]Record, 0, len(ds.Cafes[r.Key]))
		for _, c := range ds.Cafes[r.Key] {
			records = append(records, Record{Cafe: c, RegionID: r.Key, RegionName: r.Name})
		}
		s.byRegion[r.Key] = records
		s.all = append(s.all, records...)
	}
	return s
}

func (s *Snapshot) Len() int { return len(s.all) }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

func (s *Snapshot) RegionKeys() []string {
	keys := make([]string, len(s.regions))
	for i, r := range s.regions {
		keys[i] = r.Key
	}
	return keys
}

// All returns a page of every record, in region order.
func (s *Snapshot) All(skip, limit int) []Record {
	return page(s.all, skip, limit)
}

// Region returns a page of one region. The key is matched after lower-casing
// and replacing spaces with underscores.
func (s *Snapshot) Region(name string, skip, limit int) ([]Record, error) {
	key := RegionKey(name)
	records, ok := s.byRegion[key]
	if !ok {
		return nil, &UnknownRegionError{Region: name, Available: s.RegionKeys()}
	}
	return page(records, skip, limit), nil
}

// Search matches q case-insensitively against name and address.
func (s *Snapshot) Search(q string, max int) []Record {
	q = strings.ToLower(q)
	var out []Record
	for _, r := range s.all {
		if strings.Contains(strings.ToLower(r.Cafe.Name), q) ||
			strings.Contains(strings.ToLower(r.Cafe.Address), q) {
			out = append(out, r)
			if len(out) == max {
				break
			}
		}
	}
	return out
}

func (s *Snapshot) Counts() []RegionCount {
	out := make([]RegionCount, len(s.regions))
	for i, r := range s.regions {
		out[i] = RegionCount{Key: r.Key, Name: r.Name, Count: len(s.byRegion[r.Key])}
	}
	return out
}

// Cafes returns the raw records of every region, for the sync flows.
func (s *Snapshot) Cafes() []model.RawCafe {
	out := make([]model.RawCafe, len(s.all))
	for i, r := range s.all {
		out[i] = r.Cafe
	}
	return out
}

func RegionKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

type UnknownRegionError struct {
	Region    string
	Available []string
}

func (e *UnknownRegionError) Error() string {
	quoted := make([]string, len(e.Available))
	for i, k := range e.Available {
		quoted[i] = "'" + k + "'"
	}
	return fmt.Sprintf("Region '%s' not found. Available: [%s]", e.Region, strings.Join(quoted, ", "))
}

func page(records []Record, skip, limit int) []Record {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(records) || limit <= 0 {
		return []Record{}
	}
	if limit > len(records)-skip {
		limit = len(records) - skip
	}
	return records[skip : skip+limit]
}
