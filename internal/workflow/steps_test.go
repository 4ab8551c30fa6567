package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veostudio/internal/domain"
	"veostudio/internal/providers/genai"
	"veostudio/internal/storage"
)

func TestValidatorBlankKeyMakesNoCall(t *testing.T) {
	svc := &fakeService{}
	v := NewValidator(svc, zerolog.Nop())

	for _, key := range []string{"", "   ", "\t\n"} {
		assert.False(t, v.Validate(context.Background(), key))
	}
	probes, _, _ := svc.counts()
	assert.Zero(t, probes)
}

func TestValidatorProbeOutcome(t *testing.T) {
	svc := &fakeService{}
	v := NewValidator(svc, zerolog.Nop())
	assert.True(t, v.Validate(context.Background(), "VALID_KEY"))

	svc.probeErr = &genai.APIError{StatusCode: http.StatusBadRequest, Message: "API key not valid"}
	assert.False(t, v.Validate(context.Background(), "BAD_KEY"))

	svc.probeErr = errors.New("dial tcp: connection refused")
	assert.False(t, v.Validate(context.Background(), "VALID_KEY"))

	probes, _, _ := svc.counts()
	assert.Equal(t, 3, probes)
}

func TestSubmitterRejectsLocally(t *testing.T) {
	svc := &fakeService{submitOp: domain.Operation{Name: "op-1"}}
	s := NewSubmitter(svc, domain.DefaultCatalog(), zerolog.Nop())

	_, err := s.Submit(context.Background(), "k", "  ", domain.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)

	bad := domain.DefaultOptions()
	bad.Model = "veo-9"
	_, err = s.Submit(context.Background(), "k", "prompt", bad)
	assert.ErrorIs(t, err, domain.ErrUnknownModel)

	_, err = s.Submit(context.Background(), "", "prompt", domain.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrCredentialRequired)

	assert.Empty(t, svc.submitted)
}

func TestSubmitterCarriesOptions(t *testing.T) {
	svc := &fakeService{submitOp: domain.Operation{Name: "op-1"}}
	s := NewSubmitter(svc, domain.DefaultCatalog(), zerolog.Nop())

	opts := domain.GenerationOptions{
		Model:          "veo-3-fast-generate-preview",
		AspectRatio:    domain.AspectRatio9x16,
		Resolution:     domain.Resolution720p,
		SafetyPolicy:   domain.SafetyAllowAdult,
		NegativePrompt: "text overlays",
	}
	op, err := s.Submit(context.Background(), "VALID_KEY", "surfer at dawn", opts)
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.Name)

	require.Len(t, svc.submitted, 1)
	assert.Equal(t, domain.VideoRequest{
		Model:          "veo-3-fast-generate-preview",
		Prompt:         "surfer at dawn",
		AspectRatio:    domain.AspectRatio9x16,
		Resolution:     domain.Resolution720p,
		SafetyPolicy:   domain.SafetyAllowAdult,
		NegativePrompt: "text overlays",
		NumberOfVideos: 1,
	}, svc.submitted[0])
	assert.Equal(t, []string{"VALID_KEY"}, svc.submitKeys)
}

func TestSubmitterPropagatesServiceMessage(t *testing.T) {
	svc := &fakeService{submitErr: &genai.APIError{StatusCode: 429, Message: "Resource has been exhausted (e.g. check quota)."}}
	s := NewSubmitter(svc, domain.DefaultCatalog(), zerolog.Nop())

	_, err := s.Submit(context.Background(), "k", "p", domain.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, "Resource has been exhausted (e.g. check quota).", err.Error())
}

func TestPollerTwoCycles(t *testing.T) {
	svc := &fakeService{refreshes: []domain.Operation{
		{Name: "op-1"},
		videoOp("op-1", "https://example/video?token=abc"),
	}}
	waits := &waitRecorder{}
	p := NewPoller(svc, 10*time.Second, 90, waits.Wait, zerolog.Nop())

	var attempts []int
	op, err := p.PollWithProgress(context.Background(), "k", domain.Operation{Name: "op-1"}, func(attempt int, _ domain.Operation) {
		attempts = append(attempts, attempt)
	})
	require.NoError(t, err)
	assert.True(t, op.Done)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, waits.Durations())
	_, refreshes, _ := svc.counts()
	assert.Equal(t, 2, refreshes)
}

func TestPollerAlreadyDone(t *testing.T) {
	svc := &fakeService{}
	waits := &waitRecorder{}
	p := NewPoller(svc, time.Second, 0, waits.Wait, zerolog.Nop())

	_, err := p.Poll(context.Background(), "k", videoOp("op-1", "u"))
	require.NoError(t, err)
	assert.Empty(t, waits.Durations())
}

func TestPollerMaxAttempts(t *testing.T) {
	svc := &fakeService{}
	waits := &waitRecorder{}
	p := NewPoller(svc, time.Second, 3, waits.Wait, zerolog.Nop())

	_, err := p.Poll(context.Background(), "k", domain.Operation{Name: "op-1"})
	assert.ErrorIs(t, err, domain.ErrPollAttemptsExceeded)
	_, refreshes, _ := svc.counts()
	assert.Equal(t, 3, refreshes)
}

func TestPollerContextCancelled(t *testing.T) {
	svc := &fakeService{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPoller(svc, time.Hour, 0, Sleep, zerolog.Nop())

	_, err := p.Poll(ctx, "k", domain.Operation{Name: "op-1"})
	assert.ErrorIs(t, err, context.Canceled)
	_, refreshes, _ := svc.counts()
	assert.Zero(t, refreshes)
}

func TestPollerOperationError(t *testing.T) {
	svc := &fakeService{refreshes: []domain.Operation{{Name: "op-1", Done: true, ErrorMessage: "internal error"}}}
	waits := &waitRecorder{}
	p := NewPoller(svc, time.Second, 0, waits.Wait, zerolog.Nop())

	_, err := p.Poll(context.Background(), "k", domain.Operation{Name: "op-1"})
	require.Error(t, err)
	assert.Equal(t, "video generation failed: internal error", err.Error())
}

func TestPollerRefreshErrorPropagates(t *testing.T) {
	svc := &fakeService{refreshErr: &genai.APIError{StatusCode: 404, Message: "operation not found"}}
	waits := &waitRecorder{}
	p := NewPoller(svc, time.Second, 0, waits.Wait, zerolog.Nop())

	_, err := p.Poll(context.Background(), "k", domain.Operation{Name: "op-1"})
	assert.EqualError(t, err, "operation not found")
}

func TestFetcherMissingURI(t *testing.T) {
	svc := &fakeService{}
	f := NewFetcher(svc, storage.NewMemoryStore(), nil, zerolog.Nop())

	_, err := f.Fetch(context.Background(), "k", domain.Operation{Name: "op-1", Done: true})
	assert.ErrorIs(t, err, domain.ErrVideoURINotFound)
	assert.EqualError(t, err, "video URI not found in API response")

	_, err = f.Fetch(context.Background(), "k", domain.Operation{Name: "op-1", Done: true, FilteredReasons: []string{"unsafe content"}})
	assert.ErrorIs(t, err, domain.ErrVideoURINotFound)
	assert.Contains(t, err.Error(), "unsafe content")

	_, _, downloads := svc.counts()
	assert.Zero(t, downloads)
}

func TestFetcherDownloadError(t *testing.T) {
	svc := &fakeService{download: &genai.DownloadResult{StatusCode: http.StatusForbidden, StatusText: "Forbidden", Body: []byte("  permission denied\n")}}
	store := storage.NewMemoryStore()
	f := NewFetcher(svc, store, nil, zerolog.Nop())

	_, err := f.Fetch(context.Background(), "k", videoOp("op-1", "https://example/video?token=abc"))
	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, http.StatusForbidden, dlErr.StatusCode)
	assert.Equal(t, "failed to download video: Forbidden - permission denied", err.Error())
	assert.Zero(t, store.Len())
}

func TestFetcherStoresAsset(t *testing.T) {
	svc := &fakeService{}
	store := storage.NewMemoryStore()
	f := NewFetcher(svc, store, nil, zerolog.Nop())

	h, err := f.Fetch(context.Background(), "VALID_KEY", videoOp("op-1", "https://example/video?token=abc"))
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", h.ContentType)
	assert.Equal(t, 1, store.Len())

	require.Len(t, svc.downloads, 1)
	u, err := url.Parse(svc.downloads[0])
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Query().Get("token"))
	assert.Equal(t, "VALID_KEY", u.Query().Get("key"))
}

func TestFetcherRedactsTransportError(t *testing.T) {
	svc := &fakeService{downloadErr: &url.Error{Op: "Get", URL: "https://example/video?key=SECRET", Err: errors.New("timeout")}}
	f := NewFetcher(svc, storage.NewMemoryStore(), nil, zerolog.Nop())

	_, err := f.Fetch(context.Background(), "SECRET", videoOp("op-1", "https://example/video"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
	var uErr *url.Error
	assert.ErrorAs(t, err, &uErr)
}

func TestWithKey(t *testing.T) {
	got, err := WithKey("https://example/video?token=abc&alt=media", "K")
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"token": {"abc"}, "alt": {"media"}, "key": {"K"}}, u.Query())

	got, err = WithKey("https://example/video", "K")
	require.NoError(t, err)
	assert.Equal(t, "https://example/video?key=K", got)
}
