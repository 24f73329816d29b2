package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"estate-intake/internal/domain"
	"estate-intake/internal/repository"
	"estate-intake/internal/service"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateSubmitRequest(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	app, err := h.applications.Submit(r.Context(), req.Form, req.ApplicantCount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidApplicantCount),
			errors.Is(err, service.ErrUnknownBHKType),
			errors.Is(err, service.ErrNoApplicantData):
			ErrorBadRequest(w, err.Error())
		default:
			log.Printf("[HTTP] submitApplication error: %v", err)
			ErrorInternal(w, "failed to submit application")
		}
		return
	}

	SuccessCreated(w, "Application received", map[string]interface{}{
		"id":             app.ID,
		"application_id": app.ApplicationID,
	})
}

// listItem is one row of the admin listing.
type listItem struct {
	ID             string `json:"id"`
	ApplicationID  string `json:"application_id"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantCount int    `json:"applicant_count"`
	BHKType        string `json:"bhk_type"`
	TotalPrice     string `json:"total_price"`
	PDFReady       bool   `json:"pdf_ready"`
	CreatedAt      string `json:"created_at"`
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	filter := ListFilterFromQuery(r)

	apps, err := h.applications.List(r.Context(), filter)
	if err != nil {
		log.Printf("[HTTP] listApplications error: %v", err)
		ErrorInternal(w, "failed to get applications")
		return
	}

	items := make([]listItem, 0, len(apps))
	for _, app := range apps {
		item := listItem{
			ID:             app.ID,
			ApplicationID:  app.ApplicationID,
			ApplicantName:  "N/A",
			ApplicantCount: app.ApplicantCount,
			BHKType:        app.BHKType,
			PDFReady:       app.PDFKey != "",
			CreatedAt:      app.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		var form domain.ApplicationForm
		if err := json.Unmarshal([]byte(app.FormData), &form); err == nil {
			item.ApplicantName = form.DisplayName()
			item.TotalPrice = form.TotalPrice
		}

		items = append(items, item)
	}

	Success(w, "", items)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "application_id")
	if id == "" {
		ErrorBadRequest(w, "application_id is required")
		return
	}

	app, err := h.applications.Find(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		ErrorNotFound(w, "application not found")
		return
	}
	if err != nil {
		log.Printf("[HTTP] getApplication error: %v", err)
		ErrorInternal(w, "failed to get application")
		return
	}

	var form domain.ApplicationForm
	if err := json.Unmarshal([]byte(app.FormData), &form); err != nil {
		log.Printf("[HTTP] getApplication decode error: %v", err)
		ErrorInternal(w, "stored form is unreadable")
		return
	}

	Success(w, "", map[string]interface{}{
		"id":              app.ID,
		"application_id":  app.ApplicationID,
		"applicant_count": app.ApplicantCount,
		"bhk_type":        app.BHKType,
		"pdf_ready":       app.PDFKey != "",
		"created_at":      app.CreatedAt.Format("2006-01-02 15:04:05"),
		"form_data":       form,
	})
}
