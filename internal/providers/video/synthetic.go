package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/providers/genai"
)

const syntheticScheme = "synthetic"

// Synthetic is an offline Service that completes every operation after a fixed
// number of refreshes and serves deterministic placeholder bytes. It keeps the
// full workflow runnable without network access.
type Synthetic struct {
	mu          sync.Mutex
	readyAfter  int
	refreshes   map[string]int
	prompts     map[string]string
	logger      zerolog.Logger
	rejectProbe func(apiKey string) bool
}

// SyntheticOption customizes a Synthetic service.
type SyntheticOption func(*Synthetic)

// WithReadyAfter sets how many refreshes an operation needs before it is done.
func WithReadyAfter(n int) SyntheticOption {
	return func(s *Synthetic) {
		if n >= 0 {
			s.readyAfter = n
		}
	}
}

// WithProbeRejecter makes Probe fail for keys matching reject.
func WithProbeRejecter(reject func(apiKey string) bool) SyntheticOption {
	return func(s *Synthetic) {
		s.rejectProbe = reject
	}
}

func WithSyntheticLogger(logger zerolog.Logger) SyntheticOption {
	return func(s *Synthetic) {
		s.logger = logger
	}
}

func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		readyAfter: 1,
		refreshes:  map[string]int{},
		prompts:    map[string]string{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthetic) Probe(ctx context.Context, apiKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.rejectProbe != nil && s.rejectProbe(apiKey) {
		return &genai.APIError{StatusCode: http.StatusBadRequest, Code: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}
	}
	return nil
}

func (s *Synthetic) Submit(ctx context.Context, _ string, req domain.VideoRequest) (domain.Operation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Operation{}, err
	}
	name := fmt.Sprintf("models/%s/operations/%s", req.Model, uuid.NewString())
	s.mu.Lock()
	s.refreshes[name] = 0
	s.prompts[name] = req.Prompt
	s.mu.Unlock()

	s.logger.Debug().Str("operation", name).Str("model", req.Model).Msg("synthetic: operation submitted")
	return s.state(name, 0), nil
}

func (s *Synthetic) Refresh(ctx context.Context, _ string, op domain.Operation) (domain.Operation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Operation{}, err
	}
	s.mu.Lock()
	count, ok := s.refreshes[op.Name]
	if ok {
		count++
		s.refreshes[op.Name] = count
	}
	s.mu.Unlock()
	if !ok {
		return domain.Operation{}, &genai.APIError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("operation %q not found", op.Name)}
	}
	return s.state(op.Name, count), nil
}

func (s *Synthetic) Download(ctx context.Context, rawURL string) (*genai.DownloadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != syntheticScheme {
		return &genai.DownloadResult{StatusCode: http.StatusNotFound, StatusText: http.StatusText(http.StatusNotFound), Body: []byte("unknown synthetic asset")}, nil
	}
	name := strings.TrimPrefix(u.Path, "/")
	s.mu.Lock()
	prompt, ok := s.prompts[name]
	s.mu.Unlock()
	if !ok {
		return &genai.DownloadResult{StatusCode: http.StatusNotFound, StatusText: http.StatusText(http.StatusNotFound), Body: []byte("unknown synthetic asset")}, nil
	}
	return &genai.DownloadResult{
		StatusCode:  http.StatusOK,
		StatusText:  http.StatusText(http.StatusOK),
		ContentType: "video/mp4",
		Body:        renderPlaceholder(name, prompt),
	}, nil
}

func (s *Synthetic) state(name string, refreshes int) domain.Operation {
	op := domain.Operation{Name: name}
	if refreshes >= s.readyAfter {
		op.Done = true
		op.VideoURIs = []string{fmt.Sprintf("%s:///%s?alt=media", syntheticScheme, name)}
	}
	return op
}

func renderPlaceholder(name, prompt string) []byte {
	sum := sha256.Sum256([]byte(name + "|" + prompt))
	lines := []string{
		"Synthetic Veo video placeholder",
		"Seed: " + hex.EncodeToString(sum[:8]),
		"Prompt: " + strings.TrimSpace(prompt),
	}
	return []byte(strings.Join(lines, "\n"))
}

var _ Service = (*Synthetic)(nil)
