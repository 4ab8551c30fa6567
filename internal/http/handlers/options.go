package handlers

import (
	"net/http"

	"github.com/samber/lo"

	"veostudio/internal/domain"
	"veostudio/internal/domain/jsoncfg"
)

type optionsResponse struct {
	Models         []domain.Model                       `json:"models"`
	AspectRatios   []domain.Choice[domain.AspectRatio]  `json:"aspect_ratios"`
	Resolutions    []domain.Choice[domain.Resolution]   `json:"resolutions"`
	SafetyPolicies []domain.Choice[domain.SafetyPolicy] `json:"safety_policies"`
	Defaults       jsoncfg.OptionsJSON                  `json:"defaults"`
}

// Options lists every selectable generation parameter and the form defaults.
func (a *App) Options(w http.ResponseWriter, r *http.Request) {
	defaults := domain.DefaultOptions()
	defaults.Model = a.Catalog.Default()
	a.json(w, http.StatusOK, optionsResponse{
		Models: a.Catalog.Models,
		AspectRatios: lo.Map(domain.AspectRatios, func(ar domain.AspectRatio, _ int) domain.Choice[domain.AspectRatio] {
			return domain.Choice[domain.AspectRatio]{Value: ar, Label: string(ar)}
		}),
		Resolutions:    domain.Resolutions,
		SafetyPolicies: domain.SafetyPolicies,
		Defaults:       jsoncfg.FromDomain(defaults),
	})
}
