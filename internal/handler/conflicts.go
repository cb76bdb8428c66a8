package handler

import (
	"net/http"
	"strconv"

	"meeting-scheduler-api/internal/calendar"
	"meeting-scheduler-api/internal/httputil"
)

// GET /api/meetings/{id}/conflicts and /api/meetings/{id}/check-conflicts
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.CheckConflicts(r.Context(), pathParam(r, "id"))
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toConflictReportJSON(report))
}

// GET /api/meetings/{id}/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Export(r.Context(), pathParam(r, "id"))
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", calendar.ContentDisposition(out.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Body)
}
