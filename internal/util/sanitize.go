package util

import (
	"html"
	"regexp"
	"strings"
)

// usernameRe mirrors the charset accepted by the FreeRADIUS tooling:
// alphanumerics plus dot, hyphen and underscore.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// SanitizeInput trims and escapes HTML/script-like characters
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return html.EscapeString(s)
}

// ValidUsername reports whether s is an acceptable subscriber or admin
// username (3-64 chars, restricted charset).
func ValidUsername(s string) bool {
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	return usernameRe.MatchString(s)
}

// ContainsSuspicious flags obvious injection attempts before they reach
// the audit trail or the database layer.
func ContainsSuspicious(s string) bool {
	badChars := []string{"<", ">", "$", "{", "}", "script", "onerror", "onload"}
	lower := strings.ToLower(s)
	for _, c := range badChars {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}
