package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"gopkg.in/yaml.v3"
)

//go:embed default_circuits.yaml
var defaultCircuits []byte

// Circuit is one entry of the predefined circuit catalog.
type Circuit struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Code  string `yaml:"code"`
}

// Catalog lists predefined circuits in display order.
type Catalog struct {
	Circuits []Circuit `yaml:"circuits"`
}

// DefaultCatalog returns the built-in circuits.
func DefaultCatalog() Catalog {
	catalog, err := ParseCatalog(defaultCircuits)
	if err != nil {
		panic(fmt.Sprintf("built-in circuit catalog: %v", err))
	}
	return catalog
}

// LoadCatalog reads a YAML catalog. An empty path yields the built-in catalog.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(catalog.Circuits))
	for i, c := range catalog.Circuits {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return Catalog{}, fmt.Errorf("catalog entry %d: missing key", i)
		}
		if seen[key] {
			return Catalog{}, fmt.Errorf("catalog entry %q: duplicate key", key)
		}
		seen[key] = true
		if strings.TrimSpace(c.Code) == "" {
			return Catalog{}, fmt.Errorf("catalog entry %q: missing code", key)
		}
		catalog.Circuits[i].Key = key
		if strings.TrimSpace(c.Label) == "" {
			catalog.Circuits[i].Label = key
		}
		catalog.Circuits[i].Code = strings.TrimRight(c.Code, "\n")
	}
	return catalog, nil
}

// Lookup finds a circuit by key.
func (c Catalog) Lookup(key string) (Circuit, bool) {
	for _, circuit := range c.Circuits {
		if circuit.Key == key {
			return circuit, true
		}
	}
	return Circuit{}, false
}

// Options returns selector entries, led by the custom sentinel.
func (c Catalog) Options() []model.PredefinedOption {
	options := make([]model.PredefinedOption, 0, len(c.Circuits)+1)
	options = append(options, model.PredefinedOption{Value: "", Label: "Custom Python"})
	for _, circuit := range c.Circuits {
		options = append(options, model.PredefinedOption{Value: circuit.Key, Label: circuit.Label})
	}
	return options
}
