package decision

import (
	"time"

	"loantrack/internal/domain/application"
	"loantrack/internal/domain/identity"
)

// Table: decisions. One row per transition, never updated.
type Decision struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	DecisionID string `gorm:"column:decision_id;type:char(32);not null;uniqueIndex:ux_decisions_decision_id"`
	// FK to loan_applications.id; a stage is decided at most once
	ApplicationID uint64             `gorm:"column:application_id;not null;uniqueIndex:ux_decisions_application_stage,priority:1"`
	FromStatus    application.Status `gorm:"column:from_status;type:varchar(16);not null;uniqueIndex:ux_decisions_application_stage,priority:2"`
	ToStatus      application.Status `gorm:"column:to_status;type:varchar(16);not null"`
	Action        application.Action `gorm:"column:action;type:varchar(16);not null"`
	ActorID       string             `gorm:"column:actor_id;type:char(32);not null"`
	ActorRole     identity.Role      `gorm:"column:actor_role;type:varchar(16);not null"`
	Reason        *string            `gorm:"column:reason;type:text"`
	DecidedAt     time.Time          `gorm:"column:decided_at;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (Decision) TableName() string { return "decisions" }

// Event is published once a decision is committed.
type Event struct {
	DecisionID    string             `json:"decision_id"`
	ApplicationID string             `json:"application_id"`
	OwnerID       string             `json:"owner_id"`
	Action        application.Action `json:"action"`
	FromStatus    application.Status `json:"from_status"`
	ToStatus      application.Status `json:"to_status"`
	ActorID       string             `json:"actor_id"`
	ActorRole     identity.Role      `json:"actor_role"`
	Reason        *string            `json:"reason,omitempty"`
	DecidedAt     time.Time          `json:"decided_at"`
}
