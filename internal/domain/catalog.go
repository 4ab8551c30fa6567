package domain

import "github.com/samber/lo"

// DefaultModelID is preselected in the generation form.
const DefaultModelID = "veo-2.0-generate-001"

// Model is one selectable video model.
type Model struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Catalog is the fixed list of models offered to the user.
type Catalog struct {
	Models       []Model `json:"models" yaml:"models"`
	DefaultModel string  `json:"default_model" yaml:"default_model"`
}

// DefaultCatalog lists the Veo models exposed by the Gemini API.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Models: []Model{
			{ID: "veo-2.0-generate-001", Label: "Veo 2"},
			{ID: "veo-3-generate-preview", Label: "Veo 3 (preview)"},
			{ID: "veo-3-fast-generate-preview", Label: "Veo 3 Fast (preview)"},
		},
		DefaultModel: DefaultModelID,
	}
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	return lo.ContainsBy(c.Models, func(m Model) bool { return m.ID == id })
}

// IDs returns the model identifiers in display order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	return lo.Map(c.Models, func(m Model, _ int) string { return m.ID })
}

// Default returns the preselected model, falling back to the first entry.
func (c *Catalog) Default() string {
	if c == nil || len(c.Models) == 0 {
		return DefaultModelID
	}
	if c.DefaultModel != "" && c.Has(c.DefaultModel) {
		return c.DefaultModel
	}
	return c.Models[0].ID
}
