package security

import "testing"

func TestParseKeysFromInlinePEM(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if signer == nil || pub == nil {
		t.Fatal("parsed keys should not be nil")
	}
	if alg := KeyAlg(pub); alg != "RS256" {
		t.Errorf("KeyAlg = %q, want RS256", alg)
	}
}

func TestParseKeysRejectsGarbage(t *testing.T) {
	if _, err := ParsePrivateKey(""); err == nil {
		t.Error("empty private key should fail")
	}
	if _, err := ParsePrivateKey("-----BEGIN GARBAGE-----\nzzzz\n-----END GARBAGE-----"); err == nil {
		t.Error("garbage PEM type should fail")
	}
	if _, err := ParsePublicKey("not pem at all and not a real path"); err == nil {
		t.Error("non-PEM, non-file public key should fail")
	}
}

func TestKeyAlgUnknownType(t *testing.T) {
	if alg := KeyAlg("not a key"); alg != "" {
		t.Errorf("KeyAlg for unknown type = %q, want empty", alg)
	}
}
