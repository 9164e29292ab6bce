package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tailscale/hujson"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

//go:embed data/*.jsonc
var embeddedData embed.FS

// Bundle is the static content shipped with the application: the main
// datasets and the "additional" packs, per category.
type Bundle struct {
	Bundled    map[entities.Category][]entities.Record
	Additional map[entities.Category][]entities.Record
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		Bundled:    make(map[entities.Category][]entities.Record),
		Additional: make(map[entities.Category][]entities.Record),
	}
}

// Size returns the number of raw records across all categories.
func (b *Bundle) Size() int {
	n := 0
	for _, recs := range b.Bundled {
		n += len(recs)
	}
	for _, recs := range b.Additional {
		n += len(recs)
	}
	return n
}

// Source provides the bundle at initialization time.
type Source interface {
	Load() (*Bundle, error)
}

// DirSource loads datasets from a directory, or from the embedded copies
// when Dir is empty.
type DirSource struct {
	Dir string
}

func (s DirSource) Load() (*Bundle, error) {
	return LoadBundle(s.Dir)
}

// StaticSource serves an already built bundle. Used by tests and the demo generator.
type StaticSource struct {
	Bundle *Bundle
	Err    error
}

func (s StaticSource) Load() (*Bundle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Bundle == nil {
		return NewBundle(), nil
	}
	return s.Bundle, nil
}

// LoadBundle reads "<table>.jsonc" and "additional_<table>.jsonc" for every
// category. Missing files are treated as empty datasets.
func LoadBundle(dir string) (*Bundle, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embeddedData, "data")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return loadBundleFS(fsys)
}

func loadBundleFS(fsys fs.FS) (*Bundle, error) {
	b := NewBundle()
	for _, category := range entities.AllCategories {
		main, err := readDataset(fsys, category.Table()+".jsonc")
		if err != nil {
			return nil, err
		}
		extra, err := readDataset(fsys, "additional_"+category.Table()+".jsonc")
		if err != nil {
			return nil, err
		}
		b.Bundled[category] = main
		b.Additional[category] = extra
	}

	// Additional numbers always enter the merge flagged as shipped numbers.
	for i := range b.Additional[entities.CategoryNumber] {
		b.Additional[entities.CategoryNumber][i].IsPredefined = true
		b.Additional[entities.CategoryNumber][i].Category = entities.CategoryNumber
	}
	return b, nil
}

func readDataset(fsys fs.FS, name string) ([]entities.Record, error) {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", name, err)
	}

	var recs []entities.Record
	if err := json.Unmarshal(standard, &recs); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", name, err)
	}
	return recs, nil
}
