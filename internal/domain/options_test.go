package domain

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate(DefaultCatalog()))
	assert.Equal(t, "veo-2.0-generate-001", opts.Model)
	assert.Equal(t, AspectRatio16x9, opts.AspectRatio)
	assert.Equal(t, Resolution1080p, opts.Resolution)
	assert.Equal(t, SafetyAllowAll, opts.SafetyPolicy)
	assert.Empty(t, opts.NegativePrompt)
}

func TestValidateReportsEveryInvalidField(t *testing.T) {
	opts := GenerationOptions{
		Model:        "sora",
		AspectRatio:  "21:9",
		Resolution:   "4k",
		SafetyPolicy: "ALLOW_NONE",
	}
	err := opts.Validate(DefaultCatalog())
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 4)
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestValidateSkipsModelCheckWithoutCatalog(t *testing.T) {
	opts := DefaultOptions()
	opts.Model = "veo-9"
	assert.NoError(t, opts.Validate(nil))
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	opts := GenerationOptions{AspectRatio: AspectRatio9x16, NegativePrompt: "blurry"}.WithDefaults()
	assert.Equal(t, DefaultModelID, opts.Model)
	assert.Equal(t, AspectRatio9x16, opts.AspectRatio)
	assert.Equal(t, Resolution1080p, opts.Resolution)
	assert.Equal(t, SafetyAllowAll, opts.SafetyPolicy)
	assert.Equal(t, "blurry", opts.NegativePrompt)
}

func TestRequestCarriesOptionsForOneVideo(t *testing.T) {
	opts := GenerationOptions{
		Model:          "veo-3-generate-preview",
		AspectRatio:    AspectRatio9x16,
		Resolution:     Resolution720p,
		SafetyPolicy:   SafetyAllowAdult,
		NegativePrompt: "  cartoonish  ",
	}
	req := opts.Request("a lion at sunset")
	assert.Equal(t, VideoRequest{
		Model:          "veo-3-generate-preview",
		Prompt:         "a lion at sunset",
		AspectRatio:    AspectRatio9x16,
		Resolution:     Resolution720p,
		SafetyPolicy:   SafetyAllowAdult,
		NegativePrompt: "cartoonish",
		NumberOfVideos: 1,
	}, req)
}

func TestPersonGenerationMapping(t *testing.T) {
	assert.Equal(t, "allow_all", SafetyAllowAll.PersonGeneration())
	assert.Equal(t, "allow_adult", SafetyAllowAdult.PersonGeneration())
	assert.Equal(t, "dont_allow", SafetyDisallowPeople.PersonGeneration())
}

func TestJobStatusGates(t *testing.T) {
	tests := []struct {
		status    JobStatus
		canSubmit bool
		busy      bool
	}{
		{JobStatusIdle, true, false},
		{JobStatusValidating, false, true},
		{JobStatusGenerating, false, true},
		{JobStatusPolling, false, true},
		{JobStatusSuccess, true, false},
		{JobStatusError, true, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.canSubmit, tc.status.CanSubmit())
			assert.Equal(t, tc.busy, tc.status.Busy())
		})
	}
}

func TestCatalogDefault(t *testing.T) {
	assert.Equal(t, DefaultModelID, DefaultCatalog().Default())
	c := &Catalog{Models: []Model{{ID: "veo-3-fast-generate-preview"}}, DefaultModel: "missing"}
	assert.Equal(t, "veo-3-fast-generate-preview", c.Default())
	var empty *Catalog
	assert.Equal(t, DefaultModelID, empty.Default())
	assert.False(t, empty.Has(DefaultModelID))
}

func TestOperationFirstVideoURI(t *testing.T) {
	op := Operation{Done: true, VideoURIs: []string{"", "https://example/video?token=abc"}}
	assert.Equal(t, "https://example/video?token=abc", op.FirstVideoURI())
	assert.False(t, op.Failed())
	assert.True(t, Operation{Done: true, ErrorMessage: "quota"}.Failed())
}
