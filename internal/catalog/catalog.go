// Package catalog reads cycle calendars from YAML files so a season can be
// scheduled in one import instead of one request per cycle.
package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/program-cycles-api/internal/dto"
)

// File is the on-disk layout of a catalog.
//
//	cycles:
//	  - startDate: 2025-01-02
//	    level: INICIAL
//	    capacity: 30
type File struct {
	Cycles []dto.CreateCycleRequest `json:"cycles" yaml:"cycles"`
}

// Load decodes a catalog. Unknown keys are rejected so typos surface early.
func Load(r io.Reader) ([]dto.CreateCycleRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Cycles) == 0 {
		return nil, fmt.Errorf("catalog has no cycles")
	}
	return f.Cycles, nil
}

// LoadFile opens path and decodes it.
func LoadFile(path string) ([]dto.CreateCycleRequest, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}
