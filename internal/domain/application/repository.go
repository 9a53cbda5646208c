package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	// GetByApplicationID returns ErrNotFound when no record matches
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	// GetByApplicationIDForUpdate locks the row for the rest of the transaction
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	// ApplyUpdate writes u only while the stored status still equals u.From,
	// returning ErrStatusMismatch otherwise
	ApplyUpdate(ctx context.Context, applicationID string, u Update) error
	ListByOwner(ctx context.Context, ownerID string) ([]LoanApplication, error)
	ListAll(ctx context.Context) ([]LoanApplication, error)
}
