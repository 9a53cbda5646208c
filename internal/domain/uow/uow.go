package uow

import (
	"context"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/decision"
)

// Repos are bound to the same transaction.
type Repos struct {
	Applications application.Repository
	Decisions    decision.Repository
}

type UnitOfWork interface {
	// lock the application first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.LoanApplication) error) error
}
