package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casetrail/assurance-service/internal/domain"
	"github.com/casetrail/assurance-service/internal/ports"
)

func jobResponse(job domain.DeletionJob) map[string]any {
	var finishedAt *string
	if job.FinishedAt != nil {
		s := job.FinishedAt.Format(time.RFC3339Nano)
		finishedAt = &s
	}
	return map[string]any{
		"job_id":               job.JobID,
		"status":               job.Status,
		"started_at":           job.StartedAt.Format(time.RFC3339Nano),
		"finished_at":          finishedAt,
		"triggered_by_type":    job.TriggeredByType,
		"triggered_by_user_id": job.TriggeredByUserID,
		"summary":              job.Summary,
	}
}

func deletionEventResponse(event domain.DeletionEvent) map[string]any {
	return map[string]any{
		"deletion_event_id":  event.DeletionEventID,
		"artifact_type":      event.ArtifactType,
		"artifact_id":        event.ArtifactID,
		"case_id":            event.CaseID,
		"deleted_at":         event.DeletedAt.Format(time.RFC3339Nano),
		"deletion_method":    event.DeletionMethod,
		"proof_hash":         event.ProofHash,
		"legal_hold_blocked": event.LegalHoldBlocked,
		"reason":             event.Reason,
	}
}

func (h *Handler) runRetentionJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	userID := actor.UserID
	job, err := h.service.RunRetentionJob(r.Context(), actor.TenantID, "USER", &userID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, jobResponse(job))
}

func (h *Handler) listDeletionJobs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}
	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	jobs, err := h.service.ListDeletionJobs(r.Context(), actor.TenantID, limit, offset)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	items := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, jobResponse(job))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"jobs": items})
}

func (h *Handler) getDeletionJob(w http.ResponseWriter, r *http.Request) {
	actor, jobID, ok := h.jobRequest(w, r)
	if !ok {
		return
	}
	job, err := h.service.GetDeletionJob(r.Context(), actor.TenantID, jobID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, jobResponse(job))
}

func (h *Handler) listDeletionEvents(w http.ResponseWriter, r *http.Request) {
	actor, jobID, ok := h.jobRequest(w, r)
	if !ok {
		return
	}
	events, err := h.service.ListDeletionEvents(r.Context(), actor.TenantID, jobID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	items := make([]map[string]any, 0, len(events))
	for _, event := range events {
		items = append(items, deletionEventResponse(event))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": items})
}

// exportDeletionEvents streams a job's deletion evidence as CSV or JSON.
func (h *Handler) exportDeletionEvents(w http.ResponseWriter, r *http.Request) {
	actor, jobID, ok := h.jobRequest(w, r)
	if !ok {
		return
	}
	rows, err := h.service.ExportDeletionEvents(r.Context(), actor.TenantID, jobID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "deletion-events-"+jobID.String()+".csv"))
		writer := csv.NewWriter(w)
		_ = writer.Write([]string{
			"artifact_type", "artifact_id", "case_id", "deleted_at",
			"deletion_method", "proof_hash", "legal_hold_blocked", "reason",
		})
		for _, row := range rows {
			caseID := ""
			if row.CaseID != nil {
				caseID = *row.CaseID
			}
			_ = writer.Write([]string{
				row.ArtifactType,
				row.ArtifactID,
				caseID,
				row.DeletedAt,
				row.DeletionMethod,
				row.ProofHash,
				strconv.FormatBool(row.LegalHoldBlocked),
				row.Reason,
			})
		}
		writer.Flush()
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) verifyDeletionProof(w http.ResponseWriter, r *http.Request) {
	actor, jobID, ok := h.jobRequest(w, r)
	if !ok {
		return
	}
	deletionEventID, err := uuid.Parse(chi.URLParam(r, "deletion_event_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid deletion_event_id")
		return
	}
	valid, err := h.service.VerifyDeletionProof(r.Context(), actor.TenantID, jobID, deletionEventID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"valid": valid})
}

func (h *Handler) jobRequest(w http.ResponseWriter, r *http.Request) (actor ports.ActorClaims, jobID uuid.UUID, ok bool) {
	actor, found := actorFromRequest(r)
	if !found {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return actor, uuid.Nil, false
	}
	jobID, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid job_id")
		return actor, uuid.Nil, false
	}
	return actor, jobID, true
}
