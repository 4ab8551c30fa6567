package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"veostudio/internal/domain"
	"veostudio/internal/domain/jsoncfg"
	"veostudio/internal/infra"
	"veostudio/internal/sqlinline"
)

const maxHistory = 100

// GenerationJournalPG implements domain.GenerationJournal on PostgreSQL. It
// stores request metadata only: never the credential, never video bytes.
type GenerationJournalPG struct {
	sql infra.SQLExecutor
}

func NewGenerationJournal(sql infra.SQLExecutor) *GenerationJournalPG {
	return &GenerationJournalPG{sql: sql}
}

// EnsureSchema creates the journal table when missing.
func (r *GenerationJournalPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QEnsureGenerationsTable); err != nil {
		return fmt.Errorf("ensure generations table: %w", err)
	}
	return nil
}

// Start inserts a new generation record.
func (r *GenerationJournalPG) Start(ctx context.Context, rec *domain.GenerationRecord) error {
	opts := jsoncfg.FromDomain(domain.GenerationOptions{
		Model:          rec.Model,
		AspectRatio:    rec.AspectRatio,
		Resolution:     rec.Resolution,
		SafetyPolicy:   rec.SafetyPolicy,
		NegativePrompt: rec.NegativePrompt,
	})
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		rec.ID,
		rec.Model,
		rec.Prompt,
		jsoncfg.MustMarshal(opts),
		string(rec.Status),
		rec.CreatedAt,
	)
	return err
}

// Finish records the terminal status of a generation.
func (r *GenerationJournalPG) Finish(ctx context.Context, id string, status domain.JobStatus, operationName, errMsg string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QFinishGeneration, id, string(status), operationName, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the newest generations first.
func (r *GenerationJournalPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentGenerations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.GenerationRecord
	for rows.Next() {
		var rec domain.GenerationRecord
		var status string
		var rawOpts []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.Model,
			&rec.Prompt,
			&rawOpts,
			&status,
			&rec.OperationName,
			&rec.ErrorMessage,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		var opts jsoncfg.OptionsJSON
		if len(rawOpts) > 0 {
			if err := json.Unmarshal(rawOpts, &opts); err != nil {
				return nil, fmt.Errorf("decode generation options: %w", err)
			}
		}
		rec.Status = domain.JobStatus(status)
		rec.AspectRatio = domain.AspectRatio(opts.AspectRatio)
		rec.Resolution = domain.Resolution(opts.Resolution)
		rec.SafetyPolicy = domain.SafetyPolicy(opts.SafetyPolicy)
		rec.NegativePrompt = opts.NegativePrompt
		items = append(items, rec)
	}
	return items, rows.Err()
}

// NoopJournal is used when no database is configured.
type NoopJournal struct{}

func (NoopJournal) Start(context.Context, *domain.GenerationRecord) error { return nil }

func (NoopJournal) Finish(context.Context, string, domain.JobStatus, string, string) error {
	return nil
}

func (NoopJournal) ListRecent(context.Context, int) ([]domain.GenerationRecord, error) {
	return nil, nil
}

var (
	_ domain.GenerationJournal = (*GenerationJournalPG)(nil)
	_ domain.GenerationJournal = NoopJournal{}
)
