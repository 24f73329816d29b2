package rest

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"estate-intake/internal/pdf"
	"estate-intake/internal/repository"

	"github.com/go-chi/chi/v5"
)

// getApplicationPDF streams the assembled document. The first request for
// an application generates and stores it; later requests get the stored
// copy, so the bytes never change between downloads.
func (h *Handler) getApplicationPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "application_id")
	if id == "" {
		ErrorBadRequest(w, "application_id is required")
		return
	}

	app, data, err := h.applications.GetPDF(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "application not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getApplicationPDF error (kind %s): %v", pdf.KindOf(err), err)
		ErrorInternal(w, "failed to generate pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", app.ApplicationID+".pdf"))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[HTTP] getApplicationPDF write error: %v", err)
	}
}

func (h *Handler) getApplicationFileURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "application_id")
	if id == "" {
		ErrorBadRequest(w, "application_id is required")
		return
	}

	url, err := h.applications.GetFileURL(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "document not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getApplicationFileURL error: %v", err)
		ErrorInternal(w, "failed to get file url")
		return
	}

	Success(w, "", map[string]interface{}{
		"url": url,
	})
}
