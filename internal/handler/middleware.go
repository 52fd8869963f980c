package handler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/models"
	"radius-admin/internal/service"
	"radius-admin/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "admin_session"

// SessionFromContext returns the authenticated session placed by
// SessionMiddleware, or nil outside the authenticated route group.
func SessionFromContext(ctx context.Context) *models.AdminSession {
	sess, _ := ctx.Value(sessionContextKey).(*models.AdminSession)
	return sess
}

// SessionMiddleware authenticates every request in the protected group.
// A missing, expired or unverifiable session gets a generic 401.
func SessionMiddleware(sessions *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				respondError(w, session.ErrUnauthenticated)
				return
			}

			sess, err := sessions.Validate(r.Context(), cookie.Value)
			if err != nil {
				respondError(w, session.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AntiForgeryMiddleware enforces the per-session token on every
// state-changing request. Validation fails closed: no token, wrong
// token or no session all yield the same rejection, and each rejection
// lands in the audit trail.
func AntiForgeryMiddleware(sessions *session.Manager, recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sess := SessionFromContext(r.Context())
			token := r.Header.Get("X-CSRF-Token")
			if token == "" {
				token = r.PostFormValue("csrf_token")
			}

			if !sessions.CheckAntiForgery(sess, token) {
				actor := "unknown"
				if sess != nil {
					actor = sess.Username
				}
				recorder.Record(r.Context(), audit.Entry{
					Actor:    actor,
					Action:   models.ActionForgeryRejected,
					Target:   r.URL.Path,
					ClientIP: clientIP(r),
					Status:   models.StatusFailure,
					Details:  audit.Details("method", r.Method),
				})
				respondError(w, service.ErrForgeryTokenMismatch)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggerMiddleware emits one structured line per request.
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.String("remote", clientIP(r)),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// clientIP returns the request's source address. chi's RealIP
// middleware has already folded trusted forwarding headers into
// RemoteAddr by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requireHTTPS redirects plain HTTP to the TLS listener. Mounted only
// when TLS is enabled.
func requireHTTPS(tlsPort int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				host, _, err := net.SplitHostPort(r.Host)
				if err != nil {
					host = r.Host
				}
				target := "https://" + host
				if tlsPort != 443 {
					target = fmt.Sprintf("https://%s:%d", host, tlsPort)
				}
				http.Redirect(w, r, target+r.URL.RequestURI(), http.StatusPermanentRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
