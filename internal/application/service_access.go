package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
)

const (
	eventAccessAllowed = "assurance.access.allowed"
	eventAccessDenied  = "assurance.access.denied"
)

// LogAccess records an allowed or denied resource access. Raw IP and
// user-agent never reach storage; both are replaced with salted hashes so
// correlation stays possible. The mirrored audit event and the bus
// notification are best-effort: their failure never fails the log write.
func (s *Service) LogAccess(ctx context.Context, input LogAccessInput) (domain.AccessLogEntry, error) {
	if err := validateLogAccessInput(input); err != nil {
		return domain.AccessLogEntry{}, err
	}

	entry := domain.AccessLogEntry{
		EntryID:      uuid.New(),
		TenantID:     input.TenantID,
		UserID:       input.UserID,
		AccessType:   input.AccessType,
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		CaseID:       input.CaseID,
		Outcome:      input.Outcome,
		Reason:       input.Reason,
		OccurredAt:   s.nowFn().Truncate(time.Microsecond),
	}
	if input.IPAddress != "" {
		h := canonical.HashWithSalt(s.cfg.PseudonymSalt, input.IPAddress)
		entry.IPHash = &h
	}
	if input.UserAgent != "" {
		h := canonical.HashWithSalt(s.cfg.PseudonymSalt, input.UserAgent)
		entry.UserAgentHash = &h
	}

	stored, err := s.accessLogs.Insert(ctx, entry)
	if err != nil {
		return domain.AccessLogEntry{}, fmt.Errorf("insert access log entry: %w", err)
	}

	s.appendAudit(ctx, s.accessAuditInput(stored))
	s.enqueueAccessEvent(ctx, stored)

	return stored, nil
}

// QueryAccessLogs returns a filtered, paginated slice of the tenant's access
// history.
func (s *Service) QueryAccessLogs(ctx context.Context, tenantID string, query AccessLogQuery) (AccessLogPage, error) {
	if strings.TrimSpace(tenantID) == "" {
		return AccessLogPage{}, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}
	limit, offset := s.clampPage(query.Limit, query.Offset)

	filter := ports.AccessLogFilter{
		ResourceType: query.ResourceType,
		CaseID:       query.CaseID,
		UserID:       query.UserID,
		Outcome:      query.Outcome,
		From:         query.From,
		To:           query.To,
	}
	entries, total, err := s.accessLogs.List(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return AccessLogPage{}, fmt.Errorf("list access logs: %w", err)
	}
	return AccessLogPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}

// accessAuditInput mirrors an access entry into the chain so one verification
// pass covers access history too.
func (s *Service) accessAuditInput(entry domain.AccessLogEntry) AppendEventInput {
	metadata := map[string]canonical.Value{
		"outcome":    canonical.String(string(entry.Outcome)),
		"accessType": canonical.String(entry.AccessType),
		"resourceId": canonical.String(entry.ResourceID),
		"ipHash":     optString(entry.IPHash),
		"uaHash":     optString(entry.UserAgentHash),
		"reason":     optString(entry.Reason),
		"caseId":     optString(entry.CaseID),
	}

	actorType := "SYSTEM"
	if entry.UserID != nil {
		actorType = "USER"
	}
	resourceID := entry.ResourceID
	return AppendEventInput{
		TenantID:    entry.TenantID,
		EntityType:  entry.ResourceType,
		EntityID:    &resourceID,
		Action:      "ACCESS",
		ActorUserID: entry.UserID,
		ActorType:   actorType,
		Metadata:    canonical.Object(metadata),
	}
}

func (s *Service) enqueueAccessEvent(ctx context.Context, entry domain.AccessLogEntry) {
	eventType := eventAccessAllowed
	if entry.Outcome == domain.AccessDenied {
		eventType = eventAccessDenied
	}
	payload, err := json.Marshal(map[string]any{
		"tenant_id":     entry.TenantID,
		"user_id":       entry.UserID,
		"access_type":   entry.AccessType,
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
		"case_id":       entry.CaseID,
		"outcome":       entry.Outcome,
		"occurred_at":   entry.OccurredAt,
	})
	if err != nil {
		logBestEffortFailure(ctx, "marshal_access_event", err, "tenant_id", entry.TenantID)
		return
	}
	event := ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: entry.TenantID,
		Payload:      payload,
		OccurredAt:   entry.OccurredAt,
	}
	if err := s.outbox.Enqueue(ctx, event); err != nil {
		logBestEffortFailure(ctx, "enqueue_access_event", err, "tenant_id", entry.TenantID)
	}
}

func validateLogAccessInput(input LogAccessInput) error {
	switch {
	case strings.TrimSpace(input.TenantID) == "":
		return fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.AccessType) == "":
		return fmt.Errorf("%w: access type required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.ResourceType) == "":
		return fmt.Errorf("%w: resource type required", domain.ErrInvalidInput)
	case strings.TrimSpace(input.ResourceID) == "":
		return fmt.Errorf("%w: resource id required", domain.ErrInvalidInput)
	}
	if input.Outcome != domain.AccessAllowed && input.Outcome != domain.AccessDenied {
		return fmt.Errorf("%w: outcome must be ALLOWED or DENIED", domain.ErrInvalidInput)
	}
	return nil
}

func optString(v *string) canonical.Value {
	if v == nil {
		return canonical.Null()
	}
	return canonical.String(*v)
}
