package mysql

import (
	"context"
	"testing"
	"time"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/decision"
	"loantrack/internal/domain/identity"
	"loantrack/pkg/id"
)

func makeDecision(appNumericID uint64, from, to application.Status, action application.Action, at time.Time) *decision.Decision {
	return &decision.Decision{
		DecisionID:    id.NewID32(),
		ApplicationID: appNumericID,
		FromStatus:    from,
		ToStatus:      to,
		Action:        action,
		ActorID:       "vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv",
		ActorRole:     identity.RoleVerifier,
		DecidedAt:     at.UTC(),
	}
}

func TestDecision_CreateAndList(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewDecisionRepository(gdb)
	ctx := context.Background()

	now := time.Now().UTC()
	second := makeDecision(7, application.StatusVerified, application.StatusApproved, application.ActionApprove, now)
	first := makeDecision(7, application.StatusPending, application.StatusVerified, application.ActionVerify, now.Add(-time.Hour))
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, makeDecision(8, application.StatusPending, application.StatusRejected, application.ActionReject, now)); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	got, err := repo.ListByApplication(ctx, 7)
	if err != nil {
		t.Fatalf("ListByApplication: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].DecisionID != first.DecisionID || got[1].DecisionID != second.DecisionID {
		t.Fatalf("decisions must be oldest first: %+v", got)
	}
}

func TestDecision_OnePerStage(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewDecisionRepository(gdb)
	ctx := context.Background()

	now := time.Now()
	if err := repo.Create(ctx, makeDecision(9, application.StatusPending, application.StatusVerified, application.ActionVerify, now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, makeDecision(9, application.StatusPending, application.StatusRejected, application.ActionReject, now)); err == nil {
		t.Fatalf("expected unique violation for a second decision on the same stage")
	}
}
