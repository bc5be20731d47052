package security

// Platform roles seen on assurance endpoints.
const (
	RoleComplianceAdmin   = "COMPLIANCE_ADMIN"
	RoleComplianceOfficer = "COMPLIANCE_OFFICER"
	RoleAuditor           = "AUDITOR"
	RoleCaseWorker        = "CASE_WORKER"
	RoleService           = "SERVICE"
)

// Permissions gating assurance operations.
const (
	PermAuditAppend     = "audit:append"
	PermAuditVerify     = "audit:verify"
	PermAccessLogsWrite = "access_logs:write"
	PermAccessLogsRead  = "access_logs:read"
	PermRetentionRead   = "retention:read"
	PermRetentionWrite  = "retention:write"
	PermJobsTrigger     = "jobs:trigger"
	PermJobsRead        = "jobs:read"
	PermSodRead         = "sod:read"
	PermSodWrite        = "sod:write"
	PermApprovalsCreate = "approvals:create"
	PermApprovalsDecide = "approvals:decide"
	PermProofsExport    = "proofs:export"
	PermArtifactsWrite  = "artifacts:write"
)

// StaticAuthorizer is the fixed role→permission matrix. The platform's policy
// service owns the authoritative copy; this mirror keeps the assurance layer
// usable when that service is unreachable.
type StaticAuthorizer struct {
	grants map[string]map[string]bool
}

func NewStaticAuthorizer() *StaticAuthorizer {
	allPerms := []string{
		PermAuditAppend, PermAuditVerify,
		PermAccessLogsWrite, PermAccessLogsRead,
		PermRetentionRead, PermRetentionWrite,
		PermJobsTrigger, PermJobsRead,
		PermSodRead, PermSodWrite,
		PermApprovalsCreate, PermApprovalsDecide,
		PermProofsExport, PermArtifactsWrite,
	}
	grants := map[string]map[string]bool{
		RoleComplianceAdmin: permSet(allPerms...),
		RoleComplianceOfficer: permSet(
			PermAuditVerify, PermAccessLogsRead,
			PermRetentionRead, PermRetentionWrite,
			PermJobsTrigger, PermJobsRead,
			PermSodRead,
			PermApprovalsCreate, PermApprovalsDecide,
			PermProofsExport,
		),
		RoleAuditor: permSet(
			PermAuditVerify, PermAccessLogsRead,
			PermRetentionRead, PermJobsRead,
			PermSodRead, PermProofsExport,
		),
		RoleCaseWorker: permSet(
			PermApprovalsCreate,
		),
		RoleService: permSet(
			PermAuditAppend, PermAccessLogsWrite, PermArtifactsWrite,
		),
	}
	return &StaticAuthorizer{grants: grants}
}

func (a *StaticAuthorizer) IsAuthorized(role, permission string) bool {
	return a.grants[role][permission]
}

func permSet(perms ...string) map[string]bool {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}
