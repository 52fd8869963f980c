package hashing

import (
	"testing"

	"radius-admin/internal/config"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(&config.Config{
		Environment: "development",
		Hashing: config.HashingConfig{
			Argon2MemoryCost:  8 * 1024,
			Argon2TimeCost:    1,
			Argon2Parallelism: 1,
			Pepper:            "test-pepper",
		},
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := testHasher(t)

	result, err := h.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := h.VerifyPassword("Sup3r$ecret", result)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = h.VerifyPassword("wrong-password", result)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h := testHasher(t)

	a, err := h.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := h.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if a.Salt == b.Salt || a.Hash == b.Hash {
		t.Fatal("two hashes of the same password must use different salts")
	}
}

func TestVerifyPasswordRejectsUnknownAlgorithm(t *testing.T) {
	h := testHasher(t)

	result, err := h.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	result.Algorithm = "bcrypt"

	if _, err := h.VerifyPassword("Sup3r$ecret", result); err == nil {
		t.Fatal("unknown algorithm must error")
	}
}

func TestNTPasswordHash(t *testing.T) {
	cases := []struct {
		password string
		want     string
	}{
		// Known MD4/UTF-16LE vector.
		{"password", "8846F7EAEE8FB117AD06BDD830B7586C"},
		{"", "31D6CFE0D16AE931B73C59D7E0C089C0"},
	}

	for _, tc := range cases {
		if got := NTPasswordHash(tc.password); got != tc.want {
			t.Fatalf("NTPasswordHash(%q) = %s, want %s", tc.password, got, tc.want)
		}
	}
}
