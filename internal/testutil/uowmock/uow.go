package uowmock

import (
	"context"
	"errors"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// An unset WithinApplicationTxFn returns errUnimplemented.
type UoW struct {
	WithinApplicationTxFn func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs callbacks directly against repos with no real transaction.
// The record is loaded through GetByApplicationIDForUpdate first.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinApplicationTxFn: func(ctx context.Context, id string, fn func(uow.Repos, *application.LoanApplication) error) error {
			a, err := repos.Applications.GetByApplicationIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
	}
}

func (m *UoW) WithWithinApplicationTx(fn func(context.Context, string, func(uow.Repos, *application.LoanApplication) error) error) *UoW {
	m.WithinApplicationTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	if m.WithinApplicationTxFn != nil {
		return m.WithinApplicationTxFn(ctx, applicationID, fn)
	}
	return errUnimplemented
}
