package video

import (
	"context"

	"veostudio/internal/domain"
	"veostudio/internal/providers/genai"
)

// Service is the remote generative-media collaborator used by the workflow.
type Service interface {
	// Probe returns nil when apiKey is accepted by the service.
	Probe(ctx context.Context, apiKey string) error
	Submit(ctx context.Context, apiKey string, req domain.VideoRequest) (domain.Operation, error)
	Refresh(ctx context.Context, apiKey string, op domain.Operation) (domain.Operation, error)
	// Download fetches a fully built media URL, credential included.
	Download(ctx context.Context, rawURL string) (*genai.DownloadResult, error)
}
