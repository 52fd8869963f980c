package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"radius-admin/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, settings, "")
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", service.ErrValidationFailed))
		return
	}

	sess := SessionFromContext(r.Context())
	if err := h.settings.Update(r.Context(), req, sess.Username, clientIP(r)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "settings updated")
}
