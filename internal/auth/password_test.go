package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals the plain password")
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Errorf("Compare with right password: %v", err)
	}
	if err := h.Compare(hash, "wrong horse"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Compare with wrong password = %v, want ErrPasswordMismatch", err)
	}
}

func TestHasherRejectsShortPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Hash = %v, want ErrPasswordTooShort", err)
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := NewHasher(99).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", got, bcrypt.DefaultCost)
	}
}
