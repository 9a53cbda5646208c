package decisionmock

import (
	"context"

	domain "loantrack/internal/domain/decision"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn            func(ctx context.Context, d *domain.Decision) error
	ListByApplicationFn func(ctx context.Context, applicationID uint64) ([]domain.Decision, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Decision) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListByApplication(ctx context.Context, applicationID uint64) ([]domain.Decision, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, applicationID)
	}
	return nil, context.Canceled
}
