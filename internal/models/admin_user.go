package models

import "time"

// AdminUser is an operator account for this panel. Secrets are stored as
// Argon2id hashes; the plaintext never leaves the login handler.
type AdminUser struct {
	Username      string     `json:"username" db:"username"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	PasswordSalt  string     `json:"-" db:"password_salt"`
	PepperVersion int        `json:"-" db:"pepper_version"`
	Algorithm     string     `json:"-" db:"algorithm"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	LastLoginIP   string     `json:"-" db:"last_login_ip"`
}
