package domain

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// AspectRatio is the frame shape of the generated video.
type AspectRatio string

const (
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
)

// Resolution is the output resolution of the generated video.
type Resolution string

const (
	Resolution1080p Resolution = "1080p"
	Resolution720p  Resolution = "720p"
)

// SafetyPolicy controls whether people may appear in the generated video.
type SafetyPolicy string

const (
	SafetyAllowAll       SafetyPolicy = "ALLOW_ALL"
	SafetyAllowAdult     SafetyPolicy = "ALLOW_ADULT"
	SafetyDisallowPeople SafetyPolicy = "DISALLOW_PEOPLE"
)

// Choice is a selectable option value with its display label.
type Choice[T ~string] struct {
	Value T      `json:"value"`
	Label string `json:"label"`
}

var (
	AspectRatios = []AspectRatio{AspectRatio16x9, AspectRatio9x16, AspectRatio1x1, AspectRatio4x3, AspectRatio3x4}

	Resolutions = []Choice[Resolution]{
		{Value: Resolution1080p, Label: "1080p FHD"},
		{Value: Resolution720p, Label: "720p HD"},
	}

	SafetyPolicies = []Choice[SafetyPolicy]{
		{Value: SafetyAllowAll, Label: "Allow All People"},
		{Value: SafetyAllowAdult, Label: "Allow Adults Only"},
		{Value: SafetyDisallowPeople, Label: "Disallow People"},
	}
)

func (a AspectRatio) Valid() bool {
	return lo.Contains(AspectRatios, a)
}

func (r Resolution) Valid() bool {
	return lo.ContainsBy(Resolutions, func(c Choice[Resolution]) bool { return c.Value == r })
}

func (p SafetyPolicy) Valid() bool {
	return lo.ContainsBy(SafetyPolicies, func(c Choice[SafetyPolicy]) bool { return c.Value == p })
}

// PersonGeneration maps the policy onto the Veo personGeneration parameter.
func (p SafetyPolicy) PersonGeneration() string {
	switch p {
	case SafetyAllowAdult:
		return "allow_adult"
	case SafetyDisallowPeople:
		return "dont_allow"
	default:
		return "allow_all"
	}
}

// GenerationOptions are the user-selected parameters of one submission.
type GenerationOptions struct {
	Model          string       `json:"model"`
	AspectRatio    AspectRatio  `json:"aspect_ratio"`
	Resolution     Resolution   `json:"resolution"`
	SafetyPolicy   SafetyPolicy `json:"safety_policy"`
	NegativePrompt string       `json:"negative_prompt,omitempty"`
}

// DefaultOptions mirrors the initial form state.
func DefaultOptions() GenerationOptions {
	return GenerationOptions{
		Model:        DefaultModelID,
		AspectRatio:  AspectRatio16x9,
		Resolution:   Resolution1080p,
		SafetyPolicy: SafetyAllowAll,
	}
}

// WithDefaults fills empty fields from DefaultOptions.
func (o GenerationOptions) WithDefaults() GenerationOptions {
	def := DefaultOptions()
	o.Model = lo.CoalesceOrEmpty(strings.TrimSpace(o.Model), def.Model)
	o.AspectRatio = lo.CoalesceOrEmpty(o.AspectRatio, def.AspectRatio)
	o.Resolution = lo.CoalesceOrEmpty(o.Resolution, def.Resolution)
	o.SafetyPolicy = lo.CoalesceOrEmpty(o.SafetyPolicy, def.SafetyPolicy)
	return o
}

// Validate reports every invalid field. A nil catalog skips the model check.
func (o GenerationOptions) Validate(catalog *Catalog) error {
	var result *multierror.Error
	if strings.TrimSpace(o.Model) == "" {
		result = multierror.Append(result, fmt.Errorf("%w: model is required", ErrInvalidOption))
	} else if catalog != nil && !catalog.Has(o.Model) {
		result = multierror.Append(result, fmt.Errorf("%w: %w %q", ErrInvalidOption, ErrUnknownModel, o.Model))
	}
	if !o.AspectRatio.Valid() {
		result = multierror.Append(result, fmt.Errorf("%w: aspect_ratio %q", ErrInvalidOption, o.AspectRatio))
	}
	if !o.Resolution.Valid() {
		result = multierror.Append(result, fmt.Errorf("%w: resolution %q", ErrInvalidOption, o.Resolution))
	}
	if !o.SafetyPolicy.Valid() {
		result = multierror.Append(result, fmt.Errorf("%w: safety_policy %q", ErrInvalidOption, o.SafetyPolicy))
	}
	return result.ErrorOrNil()
}

// Request builds the single-video submission for prompt.
func (o GenerationOptions) Request(prompt string) VideoRequest {
	return VideoRequest{
		Model:          o.Model,
		Prompt:         prompt,
		AspectRatio:    o.AspectRatio,
		Resolution:     o.Resolution,
		SafetyPolicy:   o.SafetyPolicy,
		NegativePrompt: strings.TrimSpace(o.NegativePrompt),
		NumberOfVideos: 1,
	}
}
