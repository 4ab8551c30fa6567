package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/storage"
	"veostudio/internal/workflow"
)

const maxBodyBytes = 1 << 20

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Workflow  *workflow.Orchestrator
	Assets    *storage.MemoryStore
	Catalog   *domain.Catalog
	Journal   domain.GenerationJournal
	Logger    zerolog.Logger
	Synthetic bool
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// fail maps workflow and domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, domain.ErrNoActiveJob):
		a.error(w, http.StatusConflict, "no_active_job", err.Error())
	case errors.Is(err, domain.ErrCredentialNotValid), errors.Is(err, domain.ErrCredentialRequired):
		a.error(w, http.StatusPreconditionFailed, "credential_not_valid", err.Error())
	case errors.Is(err, domain.ErrEmptyPrompt), errors.Is(err, domain.ErrInvalidOption):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("http: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid payload"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		a.error(w, http.StatusBadRequest, "bad_request", msg)
		return false
	}
	return true
}
