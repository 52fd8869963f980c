package handler

import (
	"net/http"
	"strconv"
	"time"

	"radius-admin/internal/audit"
	"radius-admin/internal/models"
	"radius-admin/internal/service"
)

type AuditHandler struct {
	audits *service.AuditService
}

func NewAuditHandler(audits *service.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List returns filtered audit records, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.Filter{
		Action: models.AuditAction(q.Get("action")),
		Status: models.AuditStatus(q.Get("status")),
		Actor:  q.Get("actor"),
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if t, ok := parseTime(q.Get("from")); ok {
		filter.From = t
	}
	if t, ok := parseTime(q.Get("to")); ok {
		filter.To = t
	}

	records, err := h.audits.Query(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, records, "")
}

// Search runs a free-text query over the trail.
func (h *AuditHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := h.audits.Search(r.Context(), q.Get("q"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, records, "")
}

func parseTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
