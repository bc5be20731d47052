package proof

import (
	"testing"
	"time"
)

func samplePayload() Payload {
	caseID := "case-1"
	return Payload{
		TenantID:         "tenant-1",
		ArtifactType:     "IDV_ARTIFACT",
		ArtifactID:       "artifact-1",
		CaseID:           &caseID,
		DeletedAt:        time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC),
		DeletionMethod:   "HARD_DELETE",
		LegalHoldBlocked: false,
		Reason:           "retention exceeded (90 days)",
	}
}

func TestCreateAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	p := samplePayload()
	hash := Create(p)
	if len(hash) != 64 {
		t.Fatalf("expected 64-char hex proof, got %d chars", len(hash))
	}
	if !Verify(p, hash) {
		t.Fatalf("proof should verify against its own payload")
	}
}

func TestCreateIsDeterministic(t *testing.T) {
	t.Parallel()

	p := samplePayload()
	first := Create(p)
	for i := 0; i < 5; i++ {
		if Create(p) != first {
			t.Fatalf("same payload produced different proofs")
		}
	}
}

func TestVerifyDetectsFieldChanges(t *testing.T) {
	t.Parallel()

	hash := Create(samplePayload())

	mutations := map[string]func(*Payload){
		"tenant":    func(p *Payload) { p.TenantID = "tenant-2" },
		"artifact":  func(p *Payload) { p.ArtifactID = "artifact-2" },
		"case":      func(p *Payload) { p.CaseID = nil },
		"timestamp": func(p *Payload) { p.DeletedAt = p.DeletedAt.Add(time.Second) },
		"method":    func(p *Payload) { p.DeletionMethod = "SOFT_DELETE" },
		"blocked":   func(p *Payload) { p.LegalHoldBlocked = true },
		"reason":    func(p *Payload) { p.Reason = "edited" },
	}

	for name, mutate := range mutations {
		name, mutate := name, mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := samplePayload()
			mutate(&p)
			if Verify(p, hash) {
				t.Fatalf("mutated %s field should fail verification", name)
			}
		})
	}
}

func TestSubMicrosecondPrecisionIsIgnored(t *testing.T) {
	t.Parallel()

	p := samplePayload()
	hash := Create(p)

	reloaded := p
	reloaded.DeletedAt = p.DeletedAt.Truncate(time.Microsecond)
	if !Verify(reloaded, hash) {
		t.Fatalf("microsecond-truncated timestamp should still verify")
	}

	drifted := p
	drifted.DeletedAt = p.DeletedAt.Add(500 * time.Nanosecond)
	if !Verify(drifted, hash) {
		t.Fatalf("sub-microsecond drift should not change the proof")
	}
}
