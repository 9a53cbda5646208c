package mysql

import (
	"context"

	"loantrack/internal/domain/decision"

	"gorm.io/gorm"
)

type DecisionRepository struct{ db *gorm.DB }

func NewDecisionRepository(db *gorm.DB) *DecisionRepository { return &DecisionRepository{db: db} }

func (r *DecisionRepository) Create(ctx context.Context, d *decision.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DecisionRepository) ListByApplication(ctx context.Context, applicationID uint64) ([]decision.Decision, error) {
	var out []decision.Decision
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("decided_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
