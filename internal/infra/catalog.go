package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"veostudio/internal/domain"
)

// LoadModelCatalog reads the selectable models from a YAML file. An empty
// path yields the built-in Veo catalog.
//
//	default_model: veo-2.0-generate-001
//	models:
//	  - id: veo-2.0-generate-001
//	    label: Veo 2
func LoadModelCatalog(path string) (*domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model catalog: %w", err)
	}
	return ParseModelCatalog(raw)
}

// ParseModelCatalog decodes and checks a YAML model catalog.
func ParseModelCatalog(raw []byte) (*domain.Catalog, error) {
	var catalog domain.Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode model catalog: %w", err)
	}
	catalog.Models = lo.Filter(catalog.Models, func(m domain.Model, _ int) bool {
		return strings.TrimSpace(m.ID) != ""
	})
	catalog.Models = lo.UniqBy(catalog.Models, func(m domain.Model) string { return m.ID })
	for i := range catalog.Models {
		if catalog.Models[i].Label == "" {
			catalog.Models[i].Label = catalog.Models[i].ID
		}
	}
	if len(catalog.Models) == 0 {
		return nil, errors.New("model catalog has no models")
	}
	if catalog.DefaultModel != "" && !catalog.Has(catalog.DefaultModel) {
		return nil, fmt.Errorf("model catalog default %q is not listed", catalog.DefaultModel)
	}
	return &catalog, nil
}
