package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedData embed.FS

// files lists the catalog's source documents in the order their fields
// are merged. Each file owns a disjoint set of top-level keys.
var files = []string{
	"data/races.yaml",
	"data/classes.yaml",
	"data/compatibility.yaml",
	"data/balance.yaml",
	"data/messages.yaml",
}

// Load reads and merges the embedded catalog fixtures into a Catalog.
func Load() (*Catalog, error) {
	cat := &Catalog{
		MessageTemplates:     make(map[string]MessageTemplate),
		StatusEffectDefaults: make(map[string]StatusEffectDefault),
	}
	for _, name := range files {
		raw, err := embeddedData.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", name, err)
		}
		var partial Catalog
		if err := yaml.Unmarshal(raw, &partial); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal %s: %w", name, err)
		}
		merge(cat, &partial)
	}
	return cat, nil
}

// LoadFromBytes parses a single YAML document into a Catalog, for tests
// that want a small self-contained fixture instead of the embedded data.
func LoadFromBytes(raw []byte) (*Catalog, error) {
	cat := &Catalog{
		MessageTemplates:     make(map[string]MessageTemplate),
		StatusEffectDefaults: make(map[string]StatusEffectDefault),
	}
	if err := yaml.Unmarshal(raw, cat); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal: %w", err)
	}
	return cat, nil
}

func merge(dst, src *Catalog) {
	if len(src.Races) > 0 {
		dst.Races = src.Races
	}
	if len(src.Classes) > 0 {
		dst.Classes = src.Classes
	}
	if len(src.Compatibility) > 0 {
		dst.Compatibility = src.Compatibility
	}
	if (src.Balance != Balance{}) {
		dst.Balance = src.Balance
	}
	for k, v := range src.MessageTemplates {
		dst.MessageTemplates[k] = v
	}
	for k, v := range src.StatusEffectDefaults {
		dst.StatusEffectDefaults[k] = v
	}
}
