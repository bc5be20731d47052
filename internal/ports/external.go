package ports

import (
	"context"
	"time"
)

// Authorizer is the platform's role→permission oracle. The assurance layer
// consumes it as a capability check; the matrix itself is owned elsewhere.
type Authorizer interface {
	IsAuthorized(role, permission string) bool
}

// ArtifactStorage is the physical delete capability used by HARD_DELETE.
type ArtifactStorage interface {
	Delete(ctx context.Context, storageRef string) error
}

// CaseService answers legal-hold lookups at evaluation time. Hold state is
// never embedded in retention policies.
type CaseService interface {
	HasActiveLegalHold(ctx context.Context, caseID string) (bool, error)
}

// ActorClaims is the verified identity attached to an authenticated request.
type ActorClaims struct {
	UserID    string
	TenantID  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier validates platform-issued bearer tokens.
type TokenVerifier interface {
	ParseAndValidate(token string) (ActorClaims, error)
}
