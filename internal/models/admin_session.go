package models

import "time"

// AdminSession is the authenticated context for one admin login. The
// session ID doubles as the cookie value; the CSRF token is generated
// once at creation and required on every mutating request.
type AdminSession struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	CSRFToken  string    `json:"csrf_token"`
	ClientIP   string    `json:"client_ip"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
