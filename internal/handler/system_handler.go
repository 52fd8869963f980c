package handler

import (
	"net/http"

	"radius-admin/internal/service"
)

type SystemHandler struct {
	system    *service.SystemService
	dashboard *service.DashboardService
}

func NewSystemHandler(system *service.SystemService, dashboard *service.DashboardService) *SystemHandler {
	return &SystemHandler{system: system, dashboard: dashboard}
}

func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.system.Info(r.Context()), "")
}

func (h *SystemHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, stats, "")
}
