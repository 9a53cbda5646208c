package application

import (
	"time"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/decision"
	"loantrack/internal/domain/identity"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	Amount     decimal.Decimal
	TermMonths int
	Purpose    string
}

// DecideInput carries the raw action; it is parsed and checked by Decide.
type DecideInput struct {
	Action          string
	RejectionReason *string
}

type ApplicationDTO struct {
	ApplicationID    string             `json:"application_id"`
	OwnerID          string             `json:"owner_id"`
	Amount           decimal.Decimal    `json:"amount"`
	TermMonths       int                `json:"term_months"`
	Purpose          string             `json:"purpose"`
	Status           application.Status `json:"status"`
	VerifiedBy       *string            `json:"verified_by,omitempty"`
	VerificationDate *time.Time         `json:"verification_date,omitempty"`
	ApprovedBy       *string            `json:"approved_by,omitempty"`
	ApprovalDate     *time.Time         `json:"approval_date,omitempty"`
	RejectionReason  *string            `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// PartyDTO is a resolved display identity. Email is only shown to staff.
type PartyDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

type ApplicationView struct {
	ApplicationDTO
	Owner    *PartyDTO `json:"owner,omitempty"`
	Verifier *PartyDTO `json:"verifier,omitempty"`
	Approver *PartyDTO `json:"approver,omitempty"`
}

type DecisionDTO struct {
	DecisionID string             `json:"decision_id"`
	Action     application.Action `json:"action"`
	FromStatus application.Status `json:"from_status"`
	ToStatus   application.Status `json:"to_status"`
	Actor      PartyDTO           `json:"actor"`
	ActorRole  identity.Role      `json:"actor_role"`
	Reason     *string            `json:"reason,omitempty"`
	DecidedAt  time.Time          `json:"decided_at"`
}

type StatsDTO struct {
	Total          int             `json:"total"`
	Pending        int             `json:"pending"`
	Verified       int             `json:"verified"`
	Approved       int             `json:"approved"`
	Rejected       int             `json:"rejected"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}

func toDTO(a *application.LoanApplication) ApplicationDTO {
	return ApplicationDTO{
		ApplicationID:    a.ApplicationID,
		OwnerID:          a.OwnerID,
		Amount:           a.Amount,
		TermMonths:       a.TermMonths,
		Purpose:          a.Purpose,
		Status:           a.Status,
		VerifiedBy:       a.VerifiedBy,
		VerificationDate: a.VerificationDate,
		ApprovedBy:       a.ApprovedBy,
		ApprovalDate:     a.ApprovalDate,
		RejectionReason:  a.RejectionReason,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toEvent(a *application.LoanApplication, d *decision.Decision) decision.Event {
	return decision.Event{
		DecisionID:    d.DecisionID,
		ApplicationID: a.ApplicationID,
		OwnerID:       a.OwnerID,
		Action:        d.Action,
		FromStatus:    d.FromStatus,
		ToStatus:      d.ToStatus,
		ActorID:       d.ActorID,
		ActorRole:     d.ActorRole,
		Reason:        d.Reason,
		DecidedAt:     d.DecidedAt,
	}
}
