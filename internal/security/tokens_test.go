package security

import (
	"testing"
	"time"
)

func TestTokenProviderIssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessionID, userID, role := "s1", "u1", "project_manager"

	access, accessJti, exp, err := p.IssueAccess(sessionID, userID, role)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" || accessJti == "" {
		t.Fatal("access token or jti empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	sid, uid, r, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if sid != sessionID || uid != userID || r != role {
		t.Errorf("ValidateAccess = (%q, %q, %q), want (%q, %q, %q)", sid, uid, r, sessionID, userID, role)
	}

	refresh, jti, refreshExp, err := p.IssueRefresh(sessionID, userID, role)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if refresh == "" || jti == "" {
		t.Fatal("refresh token or jti empty")
	}
	if refreshExp.Before(time.Now()) {
		t.Fatal("refresh expires at in the past")
	}

	sid, jti2, uid, r, err := p.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if sid != sessionID || uid != userID || r != role || jti2 != jti {
		t.Error("refresh claims do not round-trip")
	}
}

func TestValidateAccessRejectsRefreshStyleGarbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, _, err := p.ValidateAccess(tok); err == nil {
			t.Errorf("ValidateAccess(%q) should fail", tok)
		}
	}
}

func TestValidateAccessRejectsWrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	other := NewTokenProvider(signer, pub, "someone-else", "workforce-api", time.Minute, time.Hour)
	token, _, _, err := other.IssueAccess("s1", "u1", "admin")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := p.ValidateAccess(token); err == nil {
		t.Error("token with wrong issuer should be rejected")
	}
}

func TestValidateAccessRejectsExpired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatal(err)
	}
	p := NewTokenProvider(signer, pub, "workforce-auth", "workforce-api", -time.Minute, time.Hour)
	token, _, _, err := p.IssueAccess("s1", "u1", "employee")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := p.ValidateAccess(token); err == nil {
		t.Error("expired token should be rejected")
	}
}
