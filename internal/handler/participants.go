package handler

import (
	"net/http"

	"meeting-scheduler-api/internal/httputil"
	"meeting-scheduler-api/internal/model"
)

// POST /api/meetings/{id}/participants
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decode(r, &req); err != nil {
		httputil.FromError(w, r, err)
		return
	}
	p, err := h.svc.AddParticipant(r.Context(), pathParam(r, "id"), req.Email, req.Name)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, toParticipantJSON(*p))
}

// DELETE /api/meetings/{id}/participants/{email}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveParticipant(r.Context(), pathParam(r, "id"), pathParam(r, "email")); err != nil {
		httputil.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/participants/{email}/meetings?start_date=&end_date=
func (h *Handler) ParticipantMeetings(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	ms, err := h.svc.ParticipantMeetings(r.Context(), pathParam(r, "email"), rng)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMeetingList(ms))
}

// GET /api/participants/{email}/conflicts?start_date=&end_date=
func (h *Handler) ParticipantConflicts(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	email := model.NormalizeEmail(pathParam(r, "email"))
	report, err := h.svc.ParticipantConflicts(r.Context(), email, rng)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toParticipantReportJSON(email, report))
}
