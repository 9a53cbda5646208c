package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"loantrack/internal/domain/application"
)

func TestApplication_CreateAndGet(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewApplicationRepository(gdb)
	ctx := context.Background()

	a := makeApplication("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", time.Now())
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.OwnerID != a.OwnerID || got.Status != application.StatusPending {
		t.Errorf("unexpected application: %+v", got)
	}
	if got.Amount.String() != "5000.5" {
		t.Errorf("amount round trip = %s, want 5000.5", got.Amount)
	}
	if got.VerifiedBy != nil || got.ApprovedBy != nil || got.RejectionReason != nil {
		t.Errorf("decision fields must be empty on a new record: %+v", got)
	}

	locked, err := repo.GetByApplicationIDForUpdate(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationIDForUpdate: %v", err)
	}
	if locked.ID != a.ID {
		t.Errorf("locked read returned another row: %+v", locked)
	}
}

func TestApplication_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewApplicationRepository(gdb)
	ctx := context.Background()

	if _, err := repo.GetByApplicationID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByApplicationIDForUpdate(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for locked read, got %v", err)
	}
}

func TestApplication_ApplyUpdate_Conditional(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewApplicationRepository(gdb)
	ctx := context.Background()

	a := makeApplication("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", time.Now())
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	verify := application.Update{From: application.StatusPending, To: application.StatusVerified, Actor: "vvvvvvvvvvvvvvvvvvvvvvvvvvvvvvvv", At: at}
	if err := repo.ApplyUpdate(ctx, a.ApplicationID, verify); err != nil {
		t.Fatalf("first ApplyUpdate: %v", err)
	}

	// same precondition again: the row no longer matches
	if err := repo.ApplyUpdate(ctx, a.ApplicationID, verify); !errors.Is(err, application.ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.Status != application.StatusVerified {
		t.Fatalf("status = %s, want VERIFIED", got.Status)
	}
	if got.VerifiedBy == nil || *got.VerifiedBy != verify.Actor {
		t.Fatalf("verified_by not written: %+v", got.VerifiedBy)
	}
	if got.VerificationDate == nil || !got.VerificationDate.Equal(at) {
		t.Fatalf("verification_date = %v, want %v", got.VerificationDate, at)
	}

	reason := "collateral missing"
	reject := application.Update{From: application.StatusVerified, To: application.StatusRejected, Actor: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", At: at, Reason: &reason}
	if err := repo.ApplyUpdate(ctx, a.ApplicationID, reject); err != nil {
		t.Fatalf("reject ApplyUpdate: %v", err)
	}
	got, _ = repo.GetByApplicationID(ctx, a.ApplicationID)
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Fatalf("rejection_reason not written: %+v", got.RejectionReason)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != reject.Actor {
		t.Fatalf("approved_by not written: %+v", got.ApprovedBy)
	}
	if *got.VerifiedBy != verify.Actor {
		t.Fatalf("verified_by overwritten: %s", *got.VerifiedBy)
	}
}

func TestApplication_ApplyUpdate_Missing(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewApplicationRepository(gdb)

	err := repo.ApplyUpdate(context.Background(), "ffffffffffffffffffffffffffffffff", application.Update{
		From: application.StatusPending, To: application.StatusVerified, Actor: "x", At: time.Now(),
	})
	if !errors.Is(err, application.ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch for a missing row, got %v", err)
	}
}

func TestApplication_Lists(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewApplicationRepository(gdb)
	ctx := context.Background()

	owner := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	other := "cccccccccccccccccccccccccccccccc"
	now := time.Now().UTC()

	older := makeApplication(owner, now.Add(-2*time.Hour))
	newer := makeApplication(owner, now.Add(-1*time.Hour))
	foreign := makeApplication(other, now)
	for _, a := range []*application.LoanApplication{older, newer, foreign} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	mine, err := repo.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListByOwner len = %d, want 2", len(mine))
	}
	if mine[0].ApplicationID != newer.ApplicationID {
		t.Fatalf("ListByOwner must be newest first, got %s", mine[0].ApplicationID)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[0].ApplicationID != foreign.ApplicationID {
		t.Fatalf("unexpected ListAll result: %d rows", len(all))
	}

	none, err := repo.ListByOwner(ctx, "dddddddddddddddddddddddddddddddd")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %d rows err=%v", len(none), err)
	}
}
