package httpapi

import "net/http"

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Dashboard()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
