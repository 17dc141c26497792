package security

import (
	"strings"
	"testing"
)

func TestHashPassword_ProducesBcryptHash(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("hash = %q, want bcrypt hash with cost 10", hash)
	}
	if strings.Contains(hash, "pw123456") {
		t.Error("hash must not contain the plaintext")
	}
}

func TestHashPassword_SamePasswordDifferentHashes(t *testing.T) {
	// ソルトがユーザーごとにランダムであること
	h1, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestComparePassword_Match(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := ComparePassword(hash, "pw123456"); err != nil {
		t.Errorf("ComparePassword should succeed for matching password, got: %v", err)
	}
}

func TestComparePassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword should fail for wrong password")
	}
}
