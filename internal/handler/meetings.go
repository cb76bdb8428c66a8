package handler

import (
	"net/http"
	"time"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/httputil"
	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/service"
	"meeting-scheduler-api/internal/timerange"
)

// GET /api/meetings?start_date=&end_date=
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	ms, err := h.svc.List(r.Context(), rng)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMeetingList(ms))
}

// POST /api/meetings
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	in, err := h.fullInput(r)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	m, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/meetings/"+m.ID+"/")
	httputil.JSON(w, http.StatusCreated, toMeetingJSON(m))
}

// GET /api/meetings/{id}
func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMeetingJSON(m))
}

// PUT /api/meetings/{id}
func (h *Handler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	in, err := h.fullInput(r)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	m, err := h.svc.Update(r.Context(), pathParam(r, "id"), in)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMeetingJSON(m))
}

// PATCH /api/meetings/{id}
func (h *Handler) PatchMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decode(r, &req); err != nil {
		httputil.FromError(w, r, err)
		return
	}
	fields := map[string]string{}
	patch := model.MeetingPatch{Title: req.Title, Description: req.Description}
	patch.StartTime = parseField(fields, "start_time", req.StartTime)
	patch.EndTime = parseField(fields, "end_time", req.EndTime)
	if len(fields) > 0 {
		httputil.FromError(w, r, &errs.ValidationError{Fields: fields})
		return
	}
	m, err := h.svc.Patch(r.Context(), pathParam(r, "id"), patch)
	if err != nil {
		httputil.FromError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, toMeetingJSON(m))
}

// DELETE /api/meetings/{id}
func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), pathParam(r, "id")); err != nil {
		httputil.FromError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fullInput decodes a create/replace body. Missing and malformed times are
// reported together with the model's own checks.
func (h *Handler) fullInput(r *http.Request) (service.MeetingInput, error) {
	var req meetingRequest
	if err := decode(r, &req); err != nil {
		return service.MeetingInput{}, err
	}
	fields := map[string]string{}
	var in service.MeetingInput
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if t := parseField(fields, "start_time", req.StartTime); t != nil {
		in.StartTime = *t
	}
	if t := parseField(fields, "end_time", req.EndTime); t != nil {
		in.EndTime = *t
	}
	if len(fields) > 0 {
		return in, &errs.ValidationError{Fields: fields}
	}
	return in, nil
}

func parseField(fields map[string]string, name string, raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, ok := timerange.ParseTime(*raw)
	if !ok {
		fields[name] = "Datetime has wrong format. Use ISO 8601, e.g. 2025-12-01T10:00:00Z"
		return nil
	}
	return &t
}
