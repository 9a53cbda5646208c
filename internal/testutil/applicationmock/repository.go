package applicationmock

import (
	"context"

	domain "loantrack/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads default to context.Canceled so an unexpected call fails loudly.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	ApplyUpdateFn                 func(ctx context.Context, applicationID string, u domain.Update) error
	ListByOwnerFn                 func(ctx context.Context, ownerID string) ([]domain.LoanApplication, error)
	ListAllFn                     func(ctx context.Context) ([]domain.LoanApplication, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

// falls back to GetByApplicationIDFn when no locking variant is set
func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return m.GetByApplicationID(ctx, applicationID)
}

func (m *Repo) ApplyUpdate(ctx context.Context, applicationID string, u domain.Update) error {
	if m.ApplyUpdateFn != nil {
		return m.ApplyUpdateFn(ctx, applicationID, u)
	}
	return nil
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.LoanApplication, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAll(ctx context.Context) ([]domain.LoanApplication, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, context.Canceled
}
