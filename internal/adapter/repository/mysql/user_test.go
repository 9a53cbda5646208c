package mysql

import (
	"context"
	"errors"
	"testing"

	"loantrack/internal/domain/identity"
	"loantrack/pkg/id"
)

func makeUser(email string, role identity.Role) *identity.User {
	return &identity.User{
		UserID:       id.NewID32(),
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehol",
		Role:         role,
	}
}

func TestUser_CreateAndLookup(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	u := makeUser("ana@example.com", identity.RoleUser)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.GetByUserID(ctx, u.UserID)
	if err != nil || byID.Email != u.Email {
		t.Fatalf("GetByUserID = %+v, %v", byID, err)
	}
	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	if err != nil || byEmail.UserID != u.UserID {
		t.Fatalf("GetByEmail = %+v, %v", byEmail, err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUser_DuplicateEmail(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	if err := repo.Create(ctx, makeUser("dup@example.com", identity.RoleUser)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, makeUser("dup@example.com", identity.RoleUser)); !errors.Is(err, identity.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUser_SoftDelete(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	admin := makeUser("admin@example.com", identity.RoleAdmin)
	victim := makeUser("gone@example.com", identity.RoleVerifier)
	for _, u := range []*identity.User{admin, victim} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.SoftDelete(ctx, victim.UserID, admin.UserID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.GetByUserID(ctx, victim.UserID); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("deleted user must be hidden, got %v", err)
	}
	if err := repo.SoftDelete(ctx, victim.UserID, admin.UserID); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatalf("second delete: expected ErrUserNotFound, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 || list[0].UserID != admin.UserID {
		t.Fatalf("List = %+v, %v", list, err)
	}

	// directory lookups still see the deleted user
	found, err := repo.FindByUserIDs(ctx, []string{victim.UserID, admin.UserID, "missing"})
	if err != nil {
		t.Fatalf("FindByUserIDs: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("FindByUserIDs len = %d, want 2", len(found))
	}
	for _, u := range found {
		if u.UserID == victim.UserID && (u.DeletedBy == nil || *u.DeletedBy != admin.UserID) {
			t.Fatalf("deleted_by not recorded: %+v", u.DeletedBy)
		}
	}
}

func TestUser_CountByRole(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	n, err := repo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil || n != 0 {
		t.Fatalf("CountByRole empty = %d, %v", n, err)
	}
	_ = repo.Create(ctx, makeUser("a1@example.com", identity.RoleAdmin))
	_ = repo.Create(ctx, makeUser("u1@example.com", identity.RoleUser))

	n, err = repo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil || n != 1 {
		t.Fatalf("CountByRole = %d, %v; want 1", n, err)
	}

	none, err := repo.FindByUserIDs(ctx, nil)
	if err != nil || none != nil {
		t.Fatalf("FindByUserIDs(nil) = %v, %v", none, err)
	}
}
