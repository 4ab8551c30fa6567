package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"veostudio/internal/domain"
	"veostudio/internal/domain/jsoncfg"
)

type generationAccepted struct {
	JobID  string           `json:"job_id"`
	Status domain.JobStatus `json:"status"`
}

type historyItem struct {
	ID            string              `json:"id"`
	Prompt        string              `json:"prompt"`
	Options       jsoncfg.OptionsJSON `json:"options"`
	Status        domain.JobStatus    `json:"status"`
	OperationName string              `json:"operation_name,omitempty"`
	Error         string              `json:"error,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// GenerationsCreate starts a generation for {"prompt", "options"}.
func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.GenerationJSON
	if !a.decode(w, r, &req) {
		return
	}
	req.Normalize(a.Catalog)
	if err := req.Validate(a.Catalog); err != nil {
		a.fail(w, err)
		return
	}
	jobID, err := a.Workflow.Start(req.Prompt, req.Domain())
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Location", "/v1/session")
	a.json(w, http.StatusAccepted, generationAccepted{JobID: jobID, Status: a.Workflow.Snapshot().Status})
}

func (a *App) GenerationsCancel(w http.ResponseWriter, r *http.Request) {
	if err := a.Workflow.Cancel(); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// GenerationsHistory lists journaled generations, newest first.
func (a *App) GenerationsHistory(w http.ResponseWriter, r *http.Request) {
	if a.Journal == nil {
		a.json(w, http.StatusOK, map[string]any{"enabled": false, "items": []historyItem{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	records, err := a.Journal.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("http: load generation history")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	items := lo.Map(records, func(rec domain.GenerationRecord, _ int) historyItem {
		return historyItem{
			ID:     rec.ID,
			Prompt: rec.Prompt,
			Options: jsoncfg.FromDomain(domain.GenerationOptions{
				Model:          rec.Model,
				AspectRatio:    rec.AspectRatio,
				Resolution:     rec.Resolution,
				SafetyPolicy:   rec.SafetyPolicy,
				NegativePrompt: rec.NegativePrompt,
			}),
			Status:        rec.Status,
			OperationName: rec.OperationName,
			Error:         rec.ErrorMessage,
			CreatedAt:     rec.CreatedAt,
			UpdatedAt:     rec.UpdatedAt,
		}
	})
	a.json(w, http.StatusOK, map[string]any{"enabled": true, "items": items})
}
