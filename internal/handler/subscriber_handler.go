package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"radius-admin/internal/service"
)

type SubscriberHandler struct {
	subscribers *service.SubscriberService
}

func NewSubscriberHandler(subscribers *service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.subscribers.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, subscribers, "")
}

func (h *SubscriberHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	subscriber, err := h.subscribers.Get(r.Context(), username)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, subscriber, "")
}

func (h *SubscriberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSubscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", service.ErrValidationFailed))
		return
	}

	sess := SessionFromContext(r.Context())
	if err := h.subscribers.Create(r.Context(), req, sess.Username, clientIP(r)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, nil, "subscriber created")
}

func (h *SubscriberHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", service.ErrValidationFailed))
		return
	}
	req.Username = chi.URLParam(r, "username")

	sess := SessionFromContext(r.Context())
	if err := h.subscribers.ChangePassword(r.Context(), req, sess.Username, clientIP(r)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "password updated")
}

func (h *SubscriberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	sess := SessionFromContext(r.Context())
	if err := h.subscribers.Delete(r.Context(), username, sess.Username, clientIP(r)); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "subscriber deleted")
}
