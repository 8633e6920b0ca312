package security

import "testing"

func TestHashRefreshTokenDeterministic(t *testing.T) {
	a := HashRefreshToken("token-1")
	b := HashRefreshToken("token-1")
	if a != b {
		t.Error("same token should hash identically")
	}
	if a == HashRefreshToken("token-2") {
		t.Error("different tokens should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hex SHA-256 should be 64 chars, got %d", len(a))
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	stored := HashRefreshToken("token-1")
	if !RefreshTokenHashEqual("token-1", stored) {
		t.Error("matching token should compare equal")
	}
	if RefreshTokenHashEqual("token-2", stored) {
		t.Error("non-matching token should not compare equal")
	}
	if RefreshTokenHashEqual("", stored) {
		t.Error("empty token should not compare equal")
	}
}
