package workflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/metrics"
	"veostudio/internal/providers/video"
	"veostudio/internal/storage"
)

const maxErrorBody = 2048

// DownloadError reports a non-2xx response for the video bytes.
type DownloadError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download video: %s - %s", e.StatusText, e.Body)
}

// Fetcher downloads the first generated video of a finished operation into
// the asset store.
type Fetcher struct {
	svc     video.Service
	store   *storage.MemoryStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewFetcher(svc video.Service, store *storage.MemoryStore, m *metrics.Metrics, logger zerolog.Logger) *Fetcher {
	return &Fetcher{svc: svc, store: store, metrics: m, logger: logger}
}

// Fetch returns a handle to the downloaded bytes. The caller owns the handle
// and must revoke it when it is replaced or discarded.
func (f *Fetcher) Fetch(ctx context.Context, key string, op domain.Operation) (storage.Handle, error) {
	uri := op.FirstVideoURI()
	if uri == "" {
		if len(op.FilteredReasons) > 0 {
			return storage.Handle{}, fmt.Errorf("%w: %s", domain.ErrVideoURINotFound, strings.Join(op.FilteredReasons, "; "))
		}
		return storage.Handle{}, domain.ErrVideoURINotFound
	}

	target, err := WithKey(uri, key)
	if err != nil {
		return storage.Handle{}, err
	}

	res, err := f.svc.Download(ctx, target)
	if err != nil {
		f.logger.Error().Err(redact(err, key)).Str("operation", op.Name).Msg("workflow: download failed")
		return storage.Handle{}, redact(err, key)
	}
	if !res.OK() {
		body := strings.TrimSpace(string(res.Body))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return storage.Handle{}, &DownloadError{StatusCode: res.StatusCode, StatusText: res.StatusText, Body: body}
	}

	handle, err := f.store.Put(res.Body, res.ContentType)
	if err != nil {
		return storage.Handle{}, err
	}
	f.metrics.Downloaded(len(res.Body))
	f.logger.Info().Str("operation", op.Name).Str("asset", handle.ID).Int64("bytes", handle.Size).Msg("workflow: video downloaded")
	return handle, nil
}

// WithKey appends key as the `key` query parameter, keeping existing ones.
func WithKey(rawURL, key string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse video uri: %w", err)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact strips the credential from transport errors, which embed the URL.
func redact(err error, key string) error {
	if err == nil || key == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, key) && !strings.Contains(msg, url.QueryEscape(key)) {
		return err
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	return &redactedError{msg: msg, cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }
