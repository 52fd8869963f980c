package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/md4"

	"radius-admin/internal/config"
	"radius-admin/internal/util"
)

const (
	saltLength = 16
	keyLength  = 32

	currentPepperVersion = 1

	algorithmArgon2id = "argon2id"
)

// HashResult carries everything needed to verify a password later.
// Hash and Salt are base64-encoded for storage.
type HashResult struct {
	Hash          string
	Salt          string
	PepperVersion int
	Algorithm     string
}

// Hasher derives Argon2id hashes for admin passwords. A server-side
// pepper is mixed into every hash so a dumped database alone is not
// enough to mount an offline attack.
type Hasher struct {
	memoryCost  uint32
	timeCost    uint32
	parallelism uint8
	pepper      string
}

func NewHasher(cfg *config.Config) (*Hasher, error) {
	pepper := cfg.Hashing.Pepper
	if pepper == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("HASHING_PEPPER must be set in production")
		}
		// Dev convenience: hashes will not survive a restart.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate dev pepper: %w", err)
		}
		pepper = base64.StdEncoding.EncodeToString(buf)
		util.Warn("HASHING_PEPPER not set, generated an ephemeral dev pepper")
	}

	return &Hasher{
		memoryCost:  uint32(cfg.Hashing.Argon2MemoryCost),
		timeCost:    uint32(cfg.Hashing.Argon2TimeCost),
		parallelism: uint8(cfg.Hashing.Argon2Parallelism),
		pepper:      pepper,
	}, nil
}

// HashPassword derives an Argon2id hash over password+pepper with a
// fresh random salt.
func (h *Hasher) HashPassword(password string) (*HashResult, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := h.derive(password, salt)

	return &HashResult{
		Hash:          base64.StdEncoding.EncodeToString(hash),
		Salt:          base64.StdEncoding.EncodeToString(salt),
		PepperVersion: currentPepperVersion,
		Algorithm:     algorithmArgon2id,
	}, nil
}

// VerifyPassword re-derives the hash from the stored parameters and
// compares in constant time.
func (h *Hasher) VerifyPassword(password string, stored *HashResult) (bool, error) {
	if stored == nil {
		return false, fmt.Errorf("no stored hash")
	}
	if stored.Algorithm != algorithmArgon2id {
		return false, fmt.Errorf("unsupported hash algorithm: %s", stored.Algorithm)
	}
	if stored.PepperVersion != currentPepperVersion {
		return false, fmt.Errorf("unknown pepper version: %d", stored.PepperVersion)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return false, fmt.Errorf("invalid stored salt: %w", err)
	}
	expected, err := base64.StdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false, fmt.Errorf("invalid stored hash: %w", err)
	}

	derived := h.derive(password, salt)
	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		h.timeCost,
		h.memoryCost,
		h.parallelism,
		keyLength,
	)
}

// NTPasswordHash computes the NT hash of a password: MD4 over the
// UTF-16LE encoding, rendered as uppercase hex. FreeRADIUS expects this
// form in NT-Password attributes for MSCHAPv2 authentication.
func NTPasswordHash(password string) string {
	codes := utf16.Encode([]rune(password))
	encoded := make([]byte, 2*len(codes))
	for i, c := range codes {
		binary.LittleEndian.PutUint16(encoded[2*i:], c)
	}

	digest := md4.New()
	digest.Write(encoded)
	return strings.ToUpper(hex.EncodeToString(digest.Sum(nil)))
}
