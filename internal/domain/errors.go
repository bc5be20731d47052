package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Resource-scoped lookups for a foreign tenant also map here, so the
	// response never leaks cross-tenant existence.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput rejects malformed requests, e.g. an unknown artifact type
	// or a non-positive retention window.
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is a capability-level denial from the authorization oracle.
	ErrForbidden = errors.New("forbidden")
	// ErrSodViolation is distinct from ErrForbidden so callers can explain that
	// a different person must approve the action.
	ErrSodViolation = errors.New("separation of duties violation")
	ErrConflict     = errors.New("conflict")
	// ErrChainConflict signals a lost optimistic-concurrency race on a tenant's
	// chain head. Appends retry on it; it never escapes the service layer.
	ErrChainConflict = errors.New("audit chain head moved")
	// ErrJobAlreadyRunning enforces single-flight deletion jobs per tenant.
	ErrJobAlreadyRunning = errors.New("deletion job already running for tenant")
	// ErrApprovalDecided guards terminal approval states against re-decision.
	ErrApprovalDecided = errors.New("approval request already decided")
)
