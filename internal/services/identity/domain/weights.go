package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type weightsFile struct {
	Weights map[string]float64 `yaml:"weights"`
}

// LoadWeights reads a YAML override of the weight table; an empty path yields the defaults.
// Roles left out of the file keep their default weight
//
//	weights:
//	  superadmin: 1.0
//	  manager: 0.7
//	  staff: 0.5
func LoadWeights(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weights: read %s: %w", path, err)
	}
	return ParseWeights(b)
}

// ParseWeights decodes the YAML form of the weight table over the defaults
func ParseWeights(b []byte) (Weights, error) {
	var f weightsFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("weights: decode: %w", err)
	}
	w := DefaultWeights()
	for k, v := range f.Weights {
		r := Role(k)
		if !r.Valid() {
			return nil, fmt.Errorf("weights: unknown role %q", k)
		}
		w[r] = v
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
