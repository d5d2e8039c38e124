package audit

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// Signer produces a detached ES256 signature over an AuditRecord's
// canonical JSON (computed with Signature cleared), so a tampered audit
// trail can be detected independent of the Elasticsearch index's own
// integrity. No JOSE/JWS library appears anywhere in the example pack,
// so this is built directly on crypto/ecdsa + crypto/sha256 rather than
// a library dependency (see DESIGN.md).
type Signer struct {
	key *ecdsa.PrivateKey
}

func NewSigner(key *ecdsa.PrivateKey) *Signer { return &Signer{key: key} }

// Sign returns the base64url-encoded, unpadded r||s signature bytes
// (the ES256 JWS signature encoding) over record's canonical JSON.
func (s *Signer) Sign(record Record) (string, error) {
	record.Signature = ""
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(data)
	r, sVal, err := ecdsa.Sign(rand.Reader, s.key, digest[:])
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(fixedWidth(r, sVal)), nil
}

// Verify checks sig against record's canonical JSON (with Signature
// cleared) using pub.
func Verify(pub *ecdsa.PublicKey, record Record, sig string) (bool, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false, fmt.Errorf("audit: invalid signature encoding: %w", err)
	}
	size := (pub.Curve.Params().BitSize + 7) / 8
	if len(raw) != 2*size {
		return false, fmt.Errorf("audit: signature has unexpected length")
	}
	r := new(big.Int).SetBytes(raw[:size])
	sVal := new(big.Int).SetBytes(raw[size:])

	record.Signature = ""
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256(data)
	return ecdsa.Verify(pub, digest[:], r, sVal), nil
}

// fixedWidth renders r and s as equal-width big-endian byte slices
// sized to the curve (P-256 -> 32 bytes each), per the JWS ES256
// signature encoding (RFC 7518 §3.4).
func fixedWidth(r, s *big.Int) []byte {
	const size = 32
	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])
	return out
}
