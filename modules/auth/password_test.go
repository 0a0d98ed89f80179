package auth

import (
	"strings"
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "my-secure-password-123"

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == "" {
		t.Error("Hash() returned empty hash")
	}
	if hash == password {
		t.Error("Hash() returned the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %v, want bcrypt format", hash)
	}

	if !hasher.Verify(password, hash) {
		t.Error("Verify() = false for correct password, want true")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("Verify() = true for wrong password, want false")
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "same-password"

	hash1, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password are identical, want distinct salts")
	}

	if !hasher.Verify(password, hash1) || !hasher.Verify(password, hash2) {
		t.Error("Verify() failed for one of the two hashes")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := NewPasswordHasher()

	if hasher.Verify("password", "not-a-bcrypt-hash") {
		t.Error("Verify() = true for malformed hash, want false")
	}
	if hasher.Verify("password", "") {
		t.Error("Verify() = true for empty hash, want false")
	}
}
