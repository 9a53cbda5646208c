package identity

import "context"

type Repository interface {
	// Create fails with ErrEmailTaken when the email is already registered
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	SoftDelete(ctx context.Context, userID, deletedBy string) error
	CountByRole(ctx context.Context, role Role) (int64, error)

	// FindByUserIDs includes soft-deleted users so history stays readable
	FindByUserIDs(ctx context.Context, userIDs []string) ([]User, error)
}
