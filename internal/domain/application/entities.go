package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("application not found")
	// ErrStatusMismatch is returned by a conditional update that matched no row.
	ErrStatusMismatch = errors.New("application status changed concurrently")
)

// MaxAmount is the exclusive upper bound of a decimal(18,2) amount.
var MaxAmount = decimal.New(1, 16)

// Table: loan_applications
type LoanApplication struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ApplicationID string          `gorm:"column:application_id;type:char(32);not null;uniqueIndex:ux_loan_applications_application_id" json:"application_id"`
	OwnerID       string          `gorm:"column:owner_id;type:char(32);not null;index:idx_loan_applications_owner" json:"owner_id"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TermMonths    int             `gorm:"column:term_months;not null" json:"term_months"`
	Purpose       string          `gorm:"column:purpose;type:varchar(500);not null" json:"purpose"`
	Status        Status          `gorm:"column:status;type:varchar(16);not null;default:'PENDING';index:idx_loan_applications_status" json:"status"`

	VerifiedBy       *string    `gorm:"column:verified_by;type:char(32)" json:"verified_by,omitempty"`
	VerificationDate *time.Time `gorm:"column:verification_date" json:"verification_date,omitempty"`
	ApprovedBy       *string    `gorm:"column:approved_by;type:char(32)" json:"approved_by,omitempty"`
	ApprovalDate     *time.Time `gorm:"column:approval_date" json:"approval_date,omitempty"`
	RejectionReason  *string    `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

// Update describes one transition written by a conditional update.
type Update struct {
	From   Status
	To     Status
	Actor  string
	At     time.Time
	Reason *string
}

// Columns returns the column set for the transition. The decision fields
// written depend on the stage the transition leaves.
func (u Update) Columns() map[string]any {
	cols := map[string]any{
		"status":     string(u.To),
		"updated_at": u.At,
	}
	switch u.From {
	case StatusPending:
		cols["verified_by"] = u.Actor
		cols["verification_date"] = u.At
	case StatusVerified:
		cols["approved_by"] = u.Actor
		cols["approval_date"] = u.At
	}
	if u.To == StatusRejected && u.Reason != nil {
		cols["rejection_reason"] = *u.Reason
	}
	return cols
}

// Apply mirrors Columns on an in-memory record.
func (u Update) Apply(a *LoanApplication) {
	a.Status = u.To
	a.UpdatedAt = u.At
	at, actor := u.At, u.Actor
	switch u.From {
	case StatusPending:
		a.VerifiedBy = &actor
		a.VerificationDate = &at
	case StatusVerified:
		a.ApprovedBy = &actor
		a.ApprovalDate = &at
	}
	if u.To == StatusRejected && u.Reason != nil {
		reason := *u.Reason
		a.RejectionReason = &reason
	}
}
