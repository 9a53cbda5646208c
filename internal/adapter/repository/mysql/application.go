package mysql

import (
	"context"
	"errors"

	"loantrack/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *application.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*application.LoanApplication, error) {
	return firstApplication(r.db.WithContext(ctx), applicationID)
}

// sqlite drops the locking clause; the conditional update still guards the write there
func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*application.LoanApplication, error) {
	return firstApplication(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), applicationID)
}

func firstApplication(q *gorm.DB, applicationID string) (*application.LoanApplication, error) {
	var out application.LoanApplication
	err := q.Where("application_id = ?", applicationID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationRepository) ApplyUpdate(ctx context.Context, applicationID string, u application.Update) error {
	res := r.db.WithContext(ctx).
		Model(&application.LoanApplication{}).
		Where("application_id = ? AND status = ?", applicationID, string(u.From)).
		Updates(u.Columns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return application.ErrStatusMismatch
	}
	return nil
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID string) ([]application.LoanApplication, error) {
	var out []application.LoanApplication
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) ListAll(ctx context.Context) ([]application.LoanApplication, error) {
	var out []application.LoanApplication
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
