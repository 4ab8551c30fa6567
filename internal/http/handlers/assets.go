package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veostudio/internal/domain"
)

// AssetServe streams the generated video with range support.
func (a *App) AssetServe(w http.ResponseWriter, r *http.Request) {
	handle, body, err := a.Assets.Open(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", handle.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, handle.Filename()))
	}
	http.ServeContent(w, r, "", handle.CreatedAt, body)
}

// AssetDelete releases the current asset.
func (a *App) AssetDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Workflow.ReleaseAsset(chi.URLParam(r, "id")); err != nil {
		if err == domain.ErrNotFound && a.Assets.Revoke(chi.URLParam(r, "id")) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
