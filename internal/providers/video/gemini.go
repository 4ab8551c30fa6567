package video

import (
	"context"

	"veostudio/internal/domain"
	"veostudio/internal/providers/genai"
)

// Gemini adapts the Gemini REST client to Service.
type Gemini struct {
	client *genai.Client
}

func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Probe(ctx context.Context, apiKey string) error {
	return g.client.Probe(ctx, apiKey)
}

func (g *Gemini) Submit(ctx context.Context, apiKey string, req domain.VideoRequest) (domain.Operation, error) {
	return g.client.PredictLongRunning(ctx, apiKey, req)
}

func (g *Gemini) Refresh(ctx context.Context, apiKey string, op domain.Operation) (domain.Operation, error) {
	return g.client.GetOperation(ctx, apiKey, op.Name)
}

func (g *Gemini) Download(ctx context.Context, rawURL string) (*genai.DownloadResult, error) {
	return g.client.Download(ctx, rawURL)
}

var _ Service = (*Gemini)(nil)
