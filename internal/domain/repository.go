package domain

import "context"

// GenerationJournal records generation attempts for the history view.
type GenerationJournal interface {
	Start(ctx context.Context, rec *GenerationRecord) error
	Finish(ctx context.Context, id string, status JobStatus, operationName, errMsg string) error
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
