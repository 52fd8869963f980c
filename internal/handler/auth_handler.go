package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"radius-admin/internal/config"
	"radius-admin/internal/service"
)

type AuthHandler struct {
	auth          *service.AuthService
	sessionConfig config.SessionConfig
}

func NewAuthHandler(auth *service.AuthService, sessionConfig config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: auth, sessionConfig: sessionConfig}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrf_token"`
}

// Login authenticates and sets the session cookie. The anti-forgery
// token rides in the response body; clients echo it back in the
// X-CSRF-Token header on every mutating request.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body", service.ErrValidationFailed))
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.sessionConfig.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	respondSuccess(w, http.StatusOK, loginResponse{
		Username:  sess.Username,
		CSRFToken: sess.CSRFToken,
	}, "login successful")
}

// Logout destroys the session and clears the cookie. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess != nil {
		_ = h.auth.Logout(r.Context(), sess.ID, sess.Username, clientIP(r))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.sessionConfig.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	respondSuccess(w, http.StatusOK, nil, "logged out")
}
