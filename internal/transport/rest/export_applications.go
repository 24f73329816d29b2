package rest

import (
	"log"
	"net/http"

	"estate-intake/internal/transport/auth"
)

func (h *Handler) exportApplications(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateExportRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.exports.StartApplicationsExport(r.Context(), req.Fields, req.ToRepositoryFilter(), userID)
	if err != nil {
		log.Printf("[HTTP] startApplicationsExport error: %v", err)
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "Export queued", map[string]interface{}{
		"export_id": exportID,
	})
}
