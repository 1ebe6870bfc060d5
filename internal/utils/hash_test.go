package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if hash == "pw1" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "pw1") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "pw2") {
		t.Error("wrong password accepted")
	}
}
