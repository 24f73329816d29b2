package rest

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listGenerations(w http.ResponseWriter, r *http.Request) {
	generations, err := h.statuses.GetGenerations(r.Context())
	if err != nil {
		log.Printf("[HTTP] listGenerations error: %v", err)
		ErrorInternal(w, "failed to get generations")
		return
	}

	Success(w, "", generations)
}

func (h *Handler) getGeneration(w http.ResponseWriter, r *http.Request) {
	generationIDParam := chi.URLParam(r, "generation_id")
	if generationIDParam == "" {
		ErrorBadRequest(w, "generation_id is required")
		return
	}
	generationID := "generations:" + generationIDParam

	generation, err := h.statuses.GetGeneration(r.Context(), generationID)
	if err != nil {
		log.Printf("[HTTP] getGeneration error: %v", err)
		ErrorNotFound(w, "generation not found")
		return
	}

	Success(w, "", generation)
}
