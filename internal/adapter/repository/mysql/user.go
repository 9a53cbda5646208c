package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"loantrack/internal/domain/identity"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *identity.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if isDuplicate(err) {
		return identity.ErrEmailTaken
	}
	return err
}

// isDuplicate falls back to driver messages when TranslateError is off.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*identity.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("email = ?", email))
}

func firstUser(q *gorm.DB) (*identity.User, error) {
	var out identity.User
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]identity.User, error) {
	var out []identity.User
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *UserRepository) SoftDelete(ctx context.Context, userID, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"deleted_by": deletedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).Where("role = ?", string(role)).Count(&n).Error
	return n, err
}

func (r *UserRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]identity.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []identity.User
	err := r.db.WithContext(ctx).Unscoped().Where("user_id IN ?", userIDs).Find(&out).Error
	return out, err
}
