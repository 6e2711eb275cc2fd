package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/market-sim/market-sim/sim"
)

// Defaults represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Defaults struct {
	Version string `yaml:"version"`
	// Presets maps a name to a partial sim.Config. Kept as raw nodes so each
	// preset is decoded over a base config with the same strict rules as a
	// config file.
	Presets map[string]yaml.Node `yaml:"presets"`
}

// loadDefaults parses the defaults file with strict field checking.
func loadDefaults(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("reading defaults file: %w", err)
	}
	var d Defaults
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return Defaults{}, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}
	return d, nil
}

// loadPreset decodes the named preset over base.
func loadPreset(path, name string, base sim.Config) (sim.Config, error) {
	d, err := loadDefaults(path)
	if err != nil {
		return sim.Config{}, err
	}
	node, ok := d.Presets[name]
	if !ok {
		return sim.Config{}, fmt.Errorf("unknown preset %q; available: %v", name, presetNames(d))
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return sim.Config{}, fmt.Errorf("preset %q: %w", name, err)
	}
	cfg, err := sim.DecodeConfig(data, base)
	if err != nil {
		return sim.Config{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return cfg, nil
}

// presetNames returns the preset names in sorted order.
func presetNames(d Defaults) []string {
	names := make([]string, 0, len(d.Presets))
	for name := range d.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
