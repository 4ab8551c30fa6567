package workflow

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"veostudio/internal/providers/video"
)

// Validator checks whether a credential is accepted by the remote service.
type Validator struct {
	svc    video.Service
	logger zerolog.Logger
}

func NewValidator(svc video.Service, logger zerolog.Logger) *Validator {
	return &Validator{svc: svc, logger: logger}
}

// Validate probes the service with key. Blank keys fail without a network
// call; every probe failure (auth, quota, network) reads as invalid.
func (v *Validator) Validate(ctx context.Context, key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	if err := v.svc.Probe(ctx, key); err != nil {
		v.logger.Warn().Err(err).Msg("workflow: credential validation failed")
		return false
	}
	return true
}
