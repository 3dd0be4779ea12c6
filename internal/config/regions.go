package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// RegionConfig descreve um arquivo de região. Keywords são usados para
// rotear um endereço para a região correta.
type RegionConfig struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Keywords []string `json:"keywords"`
}

type RegionsFile struct {
	Default string         `json:"default"`
	Regions []RegionConfig `json:"regions"`
}

// DefaultRegions é o conjunto usado quando não há regions.json5.
func DefaultRegions() RegionsFile {
	return RegionsFile{
		Default: "sleman",
		Regions: []RegionConfig{
			{Key: "sleman", Name: "Sleman", File: "cafe_data_Sleman.json", Keywords: []string{"sleman"}},
			{Key: "kota_yogyakarta", Name: "Kota Yogyakarta", File: "cafe_data_Kota_Yogyakarta.json", Keywords: []string{"kota yogyakarta", "yogyakarta city"}},
			{Key: "bantul", Name: "Bantul", File: "cafe_data_Bantul.json", Keywords: []string{"bantul"}},
			{Key: "kulon_progo", Name: "Kulon Progo", File: "cafe_data_Kulon_Progo.json", Keywords: []string{"kulon progo"}},
			{Key: "gunung_kidul", Name: "Gunung Kidul", File: "cafe_data_Gunung_Kidul.json", Keywords: []string{"gunung kidul", "gunungkidul"}},
		},
	}
}

// ReadRegions reads a json5 region registry and merges <name>.local.<ext> over it.
// An empty path yields the defaults.
func ReadRegions(path string) (RegionsFile, error) {
	if path == "" {
		return DefaultRegions(), nil
	}

	out, err := readJSON5[RegionsFile](path)
	if err != nil {
		return RegionsFile{}, err
	}

	ext := filepath.Ext(path)
	localPath := path[:len(path)-len(ext)] + ".local" + ext
	override, err := readJSON5[RegionsFile](localPath)
	switch {
	case err == nil:
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return RegionsFile{}, fmt.Errorf("failed to merge %s: %w", localPath, err)
		}
		log.Printf("[Config] regiões mescladas com %s", localPath)
	case !os.IsNotExist(err):
		return RegionsFile{}, err
	}

	if len(out.Regions) == 0 {
		return RegionsFile{}, fmt.Errorf("no regions defined in %s", path)
	}
	return out, nil
}

func readJSON5[T any](path string) (T, error) {
	var out T
	b, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json5.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}
