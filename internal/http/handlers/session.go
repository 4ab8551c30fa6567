package handlers

import (
	"net/http"
	"time"

	"veostudio/internal/domain"
	"veostudio/internal/i18n"
	"veostudio/internal/middleware"
	"veostudio/internal/storage"
	"veostudio/internal/workflow"
)

type assetResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"download_url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

type sessionResponse struct {
	Status           domain.JobStatus        `json:"status"`
	Message          string                  `json:"message"`
	Error            string                  `json:"error,omitempty"`
	CredentialStatus domain.CredentialStatus `json:"credential_status"`
	CanSubmit        bool                    `json:"can_submit"`
	Locale           string                  `json:"locale"`
	JobID            string                  `json:"job_id,omitempty"`
	Operation        string                  `json:"operation,omitempty"`
	Model            string                  `json:"model,omitempty"`
	PollAttempts     int                     `json:"poll_attempts"`
	StartedAt        *time.Time              `json:"started_at,omitempty"`
	FinishedAt       *time.Time              `json:"finished_at,omitempty"`
	Asset            *assetResponse          `json:"asset,omitempty"`
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

func newAssetResponse(h *storage.Handle) *assetResponse {
	if h == nil {
		return nil
	}
	return &assetResponse{
		ID:          h.ID,
		URL:         h.URL(),
		DownloadURL: h.URL() + "?download=1",
		Filename:    h.Filename(),
		ContentType: h.ContentType,
		Size:        h.Size,
		CreatedAt:   h.CreatedAt,
	}
}

func (a *App) session(r *http.Request, snap workflow.Snapshot) sessionResponse {
	tag := middleware.LocaleFromContext(r.Context())
	return sessionResponse{
		Status:           snap.Status,
		Message:          i18n.Translate(tag, snap.Message),
		Error:            snap.Error,
		CredentialStatus: snap.CredentialStatus,
		CanSubmit:        a.Workflow.CanSubmit(r.URL.Query().Get("prompt")),
		Locale:           i18n.Code(tag),
		JobID:            snap.JobID,
		Operation:        snap.Operation,
		Model:            snap.Model,
		PollAttempts:     snap.PollAttempts,
		StartedAt:        snap.StartedAt,
		FinishedAt:       snap.FinishedAt,
		Asset:            newAssetResponse(snap.Asset),
	}
}

// Session reports the workflow state; can_submit evaluates ?prompt=.
func (a *App) Session(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.session(r, a.Workflow.Snapshot()))
}

// SessionCredential validates and stores the user's API key.
func (a *App) SessionCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if !a.decode(w, r, &req) {
		return
	}
	if _, err := a.Workflow.ValidateCredential(r.Context(), req.APIKey); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, a.session(r, a.Workflow.Snapshot()))
}
