package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/ReelCut/internal/model"
)

// decodeFile unmarshals a JSON or YAML file into v, chosen by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadStock reads a filler catalog and returns the widths for unit.
// Entries carry one column per unit ({"inch": 2, "mm": 50.8}) or a plain
// width ({"width": 2}) that is taken to be in the run's unit.
func LoadStock(path string, unit model.Unit) ([]float64, error) {
	var entries []map[string]float64
	if err := decodeFile(path, &entries); err != nil {
		return nil, err
	}
	widths := make([]float64, 0, len(entries))
	for i, e := range entries {
		w, ok := e[string(unit)]
		if !ok {
			w, ok = e["width"]
		}
		if !ok {
			return nil, model.NewInvalidInput("stock", "entry %d has no %q or \"width\" column", i+1, unit)
		}
		if w <= 0 {
			return nil, model.NewInvalidInput("stock", "entry %d: width must be positive, got %v", i+1, w)
		}
		widths = append(widths, w)
	}
	return widths, nil
}

// LoadMachineSpecs reads and validates a machine spec list.
func LoadMachineSpecs(path string) ([]model.MachineSpec, error) {
	var specs []model.MachineSpec
	if err := decodeFile(path, &specs); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, model.NewInvalidInput("machine_specs", "no machine specs in %s", path)
	}
	for i, s := range specs {
		if msg := validateRecord(s); msg != "" {
			return nil, model.NewInvalidInput("machine_specs", "entry %d: %s", i+1, msg)
		}
	}
	return specs, nil
}
