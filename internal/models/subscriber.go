package models

// CredentialKind is the radcheck attribute used to store a subscriber
// secret. Cleartext-Password is what FreeRADIUS expects for PAP;
// NT-Password carries the MD4 NT-hash used by MSCHAP deployments.
type CredentialKind string

const (
	CredentialCleartext CredentialKind = "Cleartext-Password"
	CredentialNTHash    CredentialKind = "NT-Password"
	// Legacy attribute still found in older radcheck rows.
	CredentialUserPassword CredentialKind = "User-Password"
)

func (k CredentialKind) Valid() bool {
	switch k {
	case CredentialCleartext, CredentialNTHash, CredentialUserPassword:
		return true
	}
	return false
}

// PasswordAttributes lists every radcheck attribute that holds a
// subscriber secret, in the order queries should match them.
func PasswordAttributes() []string {
	return []string{
		string(CredentialCleartext),
		string(CredentialUserPassword),
		string(CredentialNTHash),
	}
}

// Subscriber is one RADIUS account as presented by the admin UI: a
// distinct radcheck username with its entry count and group memberships.
type Subscriber struct {
	Username   string   `json:"username"`
	EntryCount int      `json:"entry_count"`
	Groups     []string `json:"groups,omitempty"`
}

// Credential is one radcheck row holding a subscriber secret.
type Credential struct {
	Username  string         `json:"username"`
	Attribute CredentialKind `json:"attribute"`
	Value     string         `json:"-"`
}
