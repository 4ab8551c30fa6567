package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	mode := "gemini"
	if a.Synthetic {
		mode = "synthetic"
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": mode})
}
