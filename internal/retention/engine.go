// Package retention evaluates artifact deletion eligibility. The engine is a
// pure function over policy, artifact age and legal-hold state; it holds no
// state and is safe to call concurrently and repeatedly.
package retention

import (
	"fmt"
	"time"

	"github.com/casetrail/assurance-service/internal/domain"
)

// Decision is the outcome of evaluating one artifact against one policy.
// Blocked implies Eligible: the artifact aged out but a legal hold suppresses
// the deletion. It still counts as evaluated, never as deleted.
type Decision struct {
	Eligible bool
	Blocked  bool
	Reason   string
}

// Evaluate decides whether an artifact created at createdAt may be deleted
// under policy at the instant now.
//
// Retention days are fixed 24-hour increments on the UTC timeline; no
// calendar or DST arithmetic is applied. The boundary is exclusive: an
// artifact aged exactly RetentionDays is not yet eligible.
func Evaluate(policy domain.RetentionPolicy, createdAt, now time.Time, hasLegalHold bool) Decision {
	if !policy.Enabled {
		return Decision{Eligible: false, Blocked: false, Reason: "policy disabled"}
	}

	cutoff := now.Add(-time.Duration(policy.RetentionDays) * 24 * time.Hour)
	if !createdAt.Before(cutoff) {
		return Decision{Eligible: false, Blocked: false, Reason: "within retention period"}
	}

	if policy.LegalHoldRespects && hasLegalHold {
		return Decision{Eligible: true, Blocked: true, Reason: "legal hold active"}
	}

	return Decision{
		Eligible: true,
		Blocked:  false,
		Reason:   fmt.Sprintf("retention exceeded (%d days)", policy.RetentionDays),
	}
}
