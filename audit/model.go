// Package audit records one Record per PDP decision, signed so a
// tampered audit trail can be detected independent of the index's own
// integrity guarantees.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one audited PDP decision.
type Record struct {
	DecisionID           uuid.UUID       `json:"decision_id"`
	Timestamp            time.Time       `json:"timestamp"`
	Decision             string          `json:"decision"`
	Subject              string          `json:"subject"`
	Resource             string          `json:"resource"`
	Action                string          `json:"action"`
	PolicyReferences     []string        `json:"policy_references,omitempty"`
	ObligationsFulfilled []string        `json:"obligations_fulfilled,omitempty"`
	Detail               json.RawMessage `json:"detail,omitempty"`
	// Signature is a detached ES256 JWS over the canonical JSON of every
	// field above (computed with Signature omitted), base64url-encoded.
	Signature string `json:"signature,omitempty"`
}
