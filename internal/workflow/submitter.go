package workflow

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/providers/video"
)

// Submitter starts remote generation jobs.
type Submitter struct {
	svc     video.Service
	catalog *domain.Catalog
	logger  zerolog.Logger
}

func NewSubmitter(svc video.Service, catalog *domain.Catalog, logger zerolog.Logger) *Submitter {
	return &Submitter{svc: svc, catalog: catalog, logger: logger}
}

// Submit sends a single-video request for prompt. Service errors are returned
// unwrapped so their message reaches the user as-is.
func (s *Submitter) Submit(ctx context.Context, key, prompt string, opts domain.GenerationOptions) (domain.Operation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Operation{}, domain.ErrEmptyPrompt
	}
	if strings.TrimSpace(key) == "" {
		return domain.Operation{}, domain.ErrCredentialRequired
	}
	if err := opts.Validate(s.catalog); err != nil {
		return domain.Operation{}, err
	}

	op, err := s.svc.Submit(ctx, key, opts.Request(prompt))
	if err != nil {
		s.logger.Error().Err(err).Str("model", opts.Model).Msg("workflow: submit failed")
		return domain.Operation{}, err
	}
	s.logger.Info().Str("model", opts.Model).Str("operation", op.Name).Msg("workflow: generation submitted")
	return op, nil
}
