package audit

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testRecord() Record {
	return Record{
		DecisionID: uuid.New(),
		Timestamp:  time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
		Decision:   "Permit",
		Subject:    "clinician-42",
		Resource:   "task-99",
		Action:     "read",
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer := NewSigner(key)
	record := testRecord()

	sig, err := signer.Sign(record)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig == "" {
		t.Fatal("expected a non-empty signature")
	}

	ok, err := Verify(&key.PublicKey, record, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected the signature to verify against the record it was signed over")
	}
}

func TestVerifyRejectsTamperedRecord(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer := NewSigner(key)
	record := testRecord()

	sig, err := signer.Sign(record)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := record
	tampered.Decision = "Deny"
	ok, err := Verify(&key.PublicKey, tampered, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail for a record whose fields changed after signing")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	record := testRecord()

	sig, err := NewSigner(key).Sign(record)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := Verify(&otherKey.PublicKey, record, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail against a different signer's public key")
	}
}

func TestSignIgnoresAnyPreexistingSignatureField(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer := NewSigner(key)
	record := testRecord()
	record.Signature = "stale-from-a-previous-sign"

	sig, err := signer.Sign(record)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := Verify(&key.PublicKey, record, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected Sign to clear Signature before computing the digest, so a stale value does not affect verification")
	}
}

func TestVerifyRejectsMalformedSignatureEncoding(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if _, err := Verify(&key.PublicKey, testRecord(), "not-valid-base64url!!"); err == nil {
		t.Fatal("expected an error for a malformed signature encoding")
	}
}
