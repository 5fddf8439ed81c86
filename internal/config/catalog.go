package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suPer8Hu/codeassist/internal/ai"
)

// Catalog lists the static models of each provider, keyed by provider name.
//
//	providers:
//	  OpenAI:
//	    - name: gpt-4o
//	      label: GPT-4o
//	      maxTokenAllowed: 8000
type Catalog struct {
	Providers map[string][]ai.ModelInfo `yaml:"providers"`
}

// Models returns the catalog entries for provider, nil when there are none.
func (c Catalog) Models(provider string) []ai.ModelInfo {
	return c.Providers[provider]
}

// LoadCatalog reads a catalog file. An empty path yields an empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return Catalog{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read provider catalog: %w", err)
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse provider catalog: %w", err)
	}
	for provider, models := range c.Providers {
		for i, m := range models {
			if m.Name == "" {
				return Catalog{}, fmt.Errorf("provider catalog: %s model %d has no name", provider, i)
			}
			if m.Label == "" {
				models[i].Label = m.Name
			}
		}
	}
	return c, nil
}
