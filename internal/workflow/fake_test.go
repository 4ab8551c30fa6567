package workflow

import (
	"context"
	"net/http"
	"sync"
	"time"

	"veostudio/internal/domain"
	"veostudio/internal/providers/genai"
)

// fakeService scripts the remote service for workflow tests.
type fakeService struct {
	mu sync.Mutex

	probeErr   error
	probeCalls int
	probeKeys  []string

	submitOp   domain.Operation
	submitErr  error
	submitted  []domain.VideoRequest
	submitKeys []string

	refreshes    []domain.Operation
	refreshErr   error
	refreshCalls int

	download     *genai.DownloadResult
	downloadErr  error
	downloadFunc func(ctx context.Context, rawURL string) (*genai.DownloadResult, error)
	downloads    []string
}

func (f *fakeService) Probe(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	f.probeKeys = append(f.probeKeys, key)
	return f.probeErr
}

func (f *fakeService) Submit(_ context.Context, key string, req domain.VideoRequest) (domain.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	f.submitKeys = append(f.submitKeys, key)
	if f.submitErr != nil {
		return domain.Operation{}, f.submitErr
	}
	return f.submitOp, nil
}

func (f *fakeService) Refresh(_ context.Context, _ string, op domain.Operation) (domain.Operation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return domain.Operation{}, f.refreshErr
	}
	if len(f.refreshes) == 0 {
		return domain.Operation{Name: op.Name}, nil
	}
	next := f.refreshes[0]
	if len(f.refreshes) > 1 {
		f.refreshes = f.refreshes[1:]
	}
	return next, nil
}

func (f *fakeService) Download(ctx context.Context, rawURL string) (*genai.DownloadResult, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, rawURL)
	if fn := f.downloadFunc; fn != nil {
		f.mu.Unlock()
		return fn(ctx, rawURL)
	}
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	if f.download != nil {
		return f.download, nil
	}
	return &genai.DownloadResult{StatusCode: http.StatusOK, StatusText: "OK", ContentType: "video/mp4", Body: []byte("mp4-bytes")}, nil
}

func (f *fakeService) counts() (probe, refresh, download int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeCalls, f.refreshCalls, len(f.downloads)
}

// waitRecorder is a WaitFunc that returns immediately and records durations.
type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

func (w *waitRecorder) Durations() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

// videoOp builds a finished operation carrying uri.
func videoOp(name, uri string) domain.Operation {
	return domain.Operation{Name: name, Done: true, VideoURIs: []string{uri}}
}
