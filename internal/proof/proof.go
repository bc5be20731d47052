// Package proof creates and verifies deletion proofs: a hash over the
// canonical form of a deletion event's payload, usable later to show the
// record is unaltered.
package proof

import (
	"time"

	"github.com/casetrail/assurance-service/internal/canonical"
)

// Payload lists exactly the fields a deletion proof covers. Anything else
// about the deletion is outside the proof's guarantee.
type Payload struct {
	TenantID         string
	ArtifactType     string
	ArtifactID       string
	CaseID           *string
	DeletedAt        time.Time
	DeletionMethod   string
	LegalHoldBlocked bool
	Reason           string
}

// Create returns the proof hash for payload. Generation is deterministic:
// equal payloads always produce the same proof.
func Create(p Payload) string {
	return canonical.SHA256Hex(canonical.Serialize(canonicalPayload(p)))
}

// Verify recomputes the proof for payload and compares it to proofHash.
func Verify(p Payload, proofHash string) bool {
	return Create(p) == proofHash
}

func canonicalPayload(p Payload) canonical.Value {
	caseID := canonical.Null()
	if p.CaseID != nil {
		caseID = canonical.String(*p.CaseID)
	}
	// Timestamps are truncated to microseconds to match persisted precision,
	// so a proof verified against a reloaded row still matches.
	return canonical.Object(map[string]canonical.Value{
		"tenantId":         canonical.String(p.TenantID),
		"artifactType":     canonical.String(p.ArtifactType),
		"artifactId":       canonical.String(p.ArtifactID),
		"caseId":           caseID,
		"deletedAt":        canonical.String(p.DeletedAt.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)),
		"deletionMethod":   canonical.String(p.DeletionMethod),
		"legalHoldBlocked": canonical.Bool(p.LegalHoldBlocked),
		"reason":           canonical.String(p.Reason),
	})
}
