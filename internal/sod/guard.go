// Package sod implements the separation-of-duties guard: the initiator of a
// sensitive action cannot also be its approver. Rules are tenant data, not code
// branches, so new guarded actions ship as configuration.
package sod

import "github.com/casetrail/assurance-service/internal/domain"

// Result reports whether the acting user may decide the guarded action.
// ViolatedRule names the rule that denied it, if any.
type Result struct {
	Allowed      bool
	ViolatedRule *domain.SodRule
}

// Check evaluates one guarded decision point. A globally disabled policy, an
// unknown rule id, or a disabled rule all allow the action; only an enabled
// rule with actor == creator denies it.
func Check(rules []domain.SodRule, sodEnabled bool, ruleID, actorID, creatorID string) Result {
	if !sodEnabled {
		return Result{Allowed: true}
	}

	rule, ok := findRule(rules, ruleID)
	if !ok || !rule.Enabled {
		return Result{Allowed: true}
	}

	if actorID == creatorID {
		violated := rule
		return Result{Allowed: false, ViolatedRule: &violated}
	}
	return Result{Allowed: true}
}

func findRule(rules []domain.SodRule, ruleID string) (domain.SodRule, bool) {
	for _, r := range rules {
		if r.ID == ruleID {
			return r, true
		}
	}
	return domain.SodRule{}, false
}

// DefaultRules is the rule set provisioned for tenants without an explicit SoD
// policy. Every guarded decision point in the platform has an id here.
func DefaultRules() []domain.SodRule {
	return []domain.SodRule{
		{
			ID:          "generator_cannot_approve_response",
			Name:        "Response approval",
			Description: "The author of a case response cannot approve it.",
			Enabled:     true,
		},
		{
			ID:          "legal_exception_approval",
			Name:        "Legal exception approval",
			Description: "A legal exception cannot be approved by its requester.",
			Enabled:     true,
		},
		{
			ID:          "retention_override",
			Name:        "Retention override",
			Description: "Retention overrides require a second person.",
			Enabled:     true,
		},
		{
			ID:          "two_person_export",
			Name:        "Two-person export",
			Description: "Bulk evidence exports require a distinct approver.",
			Enabled:     true,
		},
	}
}
