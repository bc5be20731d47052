package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

// AppendEvent appends one event to the tenant's audit chain. The head read and
// the conditional insert form an optimistic-concurrency loop: when another
// writer extends the chain first, the unique (tenant, seq) slot is taken and
// the append recomputes against the new head.
func (s *Service) AppendEvent(ctx context.Context, input AppendEventInput) (domain.AuditEvent, error) {
	if err := validateAppendInput(input); err != nil {
		return domain.AuditEvent{}, err
	}

	for attempt := 0; attempt < s.cfg.ChainMaxRetries; attempt++ {
		head, err := s.auditEvents.Head(ctx, input.TenantID)
		if err != nil {
			return domain.AuditEvent{}, fmt.Errorf("read chain head: %w", err)
		}

		event := domain.AuditEvent{
			EventID:     uuid.New(),
			TenantID:    input.TenantID,
			Seq:         1,
			EntityType:  input.EntityType,
			EntityID:    input.EntityID,
			Action:      input.Action,
			ActorUserID: input.ActorUserID,
			ActorType:   input.ActorType,
			OccurredAt:  s.nowFn().Truncate(time.Microsecond),
			Diff:        input.Diff,
			Metadata:    input.Metadata,
		}
		if head != nil {
			event.Seq = head.Seq + 1
			prev := head.Hash
			event.PrevHash = &prev
		}
		event.Hash = chainHash(event)

		err = s.auditEvents.Insert(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, domain.ErrChainConflict) {
			return domain.AuditEvent{}, fmt.Errorf("insert audit event: %w", err)
		}
	}
	return domain.AuditEvent{}, fmt.Errorf("%w: audit chain contention for tenant %s", domain.ErrConflict, input.TenantID)
}

// VerifyChain replays the tenant's chain oldest-first in fixed-size pages,
// recomputing every link. The first mismatch ends verification with its
// zero-based index. This is an explicit, authorization-gated operation; no
// request path blocks on it.
func (s *Service) VerifyChain(ctx context.Context, tenantID string) (domain.ChainVerification, error) {
	if strings.TrimSpace(tenantID) == "" {
		return domain.ChainVerification{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}

	var (
		index    int64
		prevHash string
		afterSeq int64
	)
	for {
		events, err := s.auditEvents.ListBySeq(ctx, tenantID, afterSeq, s.cfg.VerifyPageSize)
		if err != nil {
			return domain.ChainVerification{}, fmt.Errorf("list audit events: %w", err)
		}
		for _, event := range events {
			if msg, ok := checkLink(event, index, prevHash); !ok {
				idx := index
				return domain.ChainVerification{
					Valid:             false,
					TotalEntries:      index,
					Error:             &msg,
					FirstInvalidIndex: &idx,
				}, nil
			}
			prevHash = event.Hash
			index++
		}
		if len(events) < s.cfg.VerifyPageSize {
			break
		}
		afterSeq = events[len(events)-1].Seq
	}

	return domain.ChainVerification{Valid: true, TotalEntries: index}, nil
}

// ChainHeadStatus reports a tenant's chain length and head hash without
// replaying it.
func (s *Service) ChainHeadStatus(ctx context.Context, tenantID string) (int64, *string, error) {
	head, err := s.auditEvents.Head(ctx, tenantID)
	if err != nil {
		return 0, nil, fmt.Errorf("read chain head: %w", err)
	}
	if head == nil {
		return 0, nil, nil
	}
	hash := head.Hash
	return head.Seq, &hash, nil
}

func checkLink(event domain.AuditEvent, index int64, prevHash string) (string, bool) {
	if index == 0 {
		if event.PrevHash != nil {
			return fmt.Sprintf("first event carries prev_hash at index %d", index), false
		}
	} else {
		if event.PrevHash == nil || *event.PrevHash != prevHash {
			return fmt.Sprintf("broken chain link at index %d", index), false
		}
	}
	if chainHash(event) != event.Hash {
		return fmt.Sprintf("hash mismatch at index %d", index), false
	}
	return "", true
}

// chainHash computes sha256(prev-or-empty + canonical event payload). The
// payload excludes hash, prev_hash and seq; the timestamp is microsecond
// precision so recomputation from a persisted row is byte-identical.
func chainHash(event domain.AuditEvent) string {
	prev := ""
	if event.PrevHash != nil {
		prev = *event.PrevHash
	}
	return canonical.SHA256Hex(prev + canonical.Serialize(chainPayload(event)))
}

func chainPayload(event domain.AuditEvent) canonical.Value {
	entityID := canonical.Null()
	if event.EntityID != nil {
		entityID = canonical.String(*event.EntityID)
	}
	actorUserID := canonical.Null()
	if event.ActorUserID != nil {
		actorUserID = canonical.String(*event.ActorUserID)
	}
	return canonical.Object(map[string]canonical.Value{
		"tenantId":    canonical.String(event.TenantID),
		"entityType":  canonical.String(event.EntityType),
		"entityId":    entityID,
		"action":      canonical.String(event.Action),
		"actorUserId": actorUserID,
		"actorType":   canonical.String(event.ActorType),
		"timestamp":   canonical.String(event.OccurredAt.UTC().Format(time.RFC3339Nano)),
		"diff":        event.Diff,
		"metadata":    event.Metadata,
	})
}

func validateAppendInput(input AppendEventInput) error {
	switch {
	case strings.TrimSpace(input.TenantID) == "":
		return fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.EntityType) == "":
		return fmt.Errorf("%w: entity type required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.Action) == "":
		return fmt.Errorf("%w: action required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.ActorType) == "":
		return fmt.Errorf("%w: actor type required", domain.ErrInvalidInput)
	}
	return nil
}

// appendAudit is the fail-open append used by every other use-case: logging
// failures are surfaced to monitoring, never to the caller's primary action.
func (s *Service) appendAudit(ctx context.Context, input AppendEventInput) {
	if _, err := s.AppendEvent(ctx, input); err != nil {
		logBestEffortFailure(ctx, "append_audit_event", err,
			"tenant_id", input.TenantID,
			"entity_type", input.EntityType,
			"action", input.Action,
		)
	}
}
