package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"

	"veostudio/internal/domain"
)

// OptionsJSON is the wire shape of domain.GenerationOptions.
type OptionsJSON struct {
	Model          string `json:"model"`
	AspectRatio    string `json:"aspect_ratio"`
	Resolution     string `json:"resolution"`
	SafetyPolicy   string `json:"safety_policy"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

// GenerationJSON is the body accepted by the generation endpoint.
type GenerationJSON struct {
	Prompt  string      `json:"prompt"`
	Options OptionsJSON `json:"options"`
}

// Normalize trims user input and fills omitted options from the catalog defaults.
func (g *GenerationJSON) Normalize(catalog *domain.Catalog) {
	if g == nil {
		return
	}
	g.Prompt = strings.TrimSpace(g.Prompt)
	g.Options.Model = strings.TrimSpace(g.Options.Model)
	g.Options.AspectRatio = strings.TrimSpace(g.Options.AspectRatio)
	g.Options.Resolution = strings.ToLower(strings.TrimSpace(g.Options.Resolution))
	g.Options.SafetyPolicy = strings.ToUpper(strings.TrimSpace(g.Options.SafetyPolicy))
	g.Options.NegativePrompt = strings.TrimSpace(g.Options.NegativePrompt)
	if g.Options.Model == "" {
		g.Options.Model = catalog.Default()
	}
}

// Validate checks the prompt and every option before the workflow sees them.
func (g GenerationJSON) Validate(catalog *domain.Catalog) error {
	if g.Prompt == "" {
		return domain.ErrEmptyPrompt
	}
	return g.Domain().Validate(catalog)
}

// Domain converts the payload into generation options; empty fields take defaults.
func (g GenerationJSON) Domain() domain.GenerationOptions {
	return domain.GenerationOptions{
		Model:          g.Options.Model,
		AspectRatio:    domain.AspectRatio(g.Options.AspectRatio),
		Resolution:     domain.Resolution(g.Options.Resolution),
		SafetyPolicy:   domain.SafetyPolicy(g.Options.SafetyPolicy),
		NegativePrompt: g.Options.NegativePrompt,
	}.WithDefaults()
}

// FromDomain renders options for API responses and journal rows.
func FromDomain(o domain.GenerationOptions) OptionsJSON {
	return OptionsJSON{
		Model:          o.Model,
		AspectRatio:    string(o.AspectRatio),
		Resolution:     string(o.Resolution),
		SafetyPolicy:   string(o.SafetyPolicy),
		NegativePrompt: o.NegativePrompt,
	}
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
