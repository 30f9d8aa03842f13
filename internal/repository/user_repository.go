package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
)

// UserRow is the users table.
type UserRow struct {
	ID                string                              `gorm:"primaryKey;type:char(36)"`
	Email             string                              `gorm:"uniqueIndex;size:255;not null"`
	FirstName         string                              `gorm:"size:100"`
	LastName          string                              `gorm:"size:100"`
	PasswordHash      string                              `gorm:"size:255;not null"`
	Verified          bool                                `gorm:"not null"`
	VerificationCode  string                              `gorm:"size:64"`
	PasswordResetCode *string                             `gorm:"size:64"`
	Roles             datatypes.JSONSlice[model.RoleGrant] `gorm:"type:json"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserRow) TableName() string { return "users" }

func userToRow(u *model.User) UserRow {
	roles := u.Roles
	if roles == nil {
		roles = []model.RoleGrant{}
	}
	return UserRow{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PasswordHash:      u.PasswordHash,
		Verified:          u.Verified,
		VerificationCode:  u.VerificationCode,
		PasswordResetCode: u.PasswordResetCode,
		Roles:             datatypes.JSONSlice[model.RoleGrant](roles),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r UserRow) toModel() *model.User {
	return &model.User{
		ID:                r.ID,
		Email:             r.Email,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		PasswordHash:      r.PasswordHash,
		Verified:          r.Verified,
		VerificationCode:  r.VerificationCode,
		PasswordResetCode: r.PasswordResetCode,
		Roles:             []model.RoleGrant(r.Roles),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository. The DB must be opened
// with TranslateError so duplicate emails are recognised.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	row := userToRow(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateUserError(err)
	}
	user.CreatedAt, user.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var row UserRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateUserError(err)
	}
	return row.toModel(), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var row UserRow
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, translateUserError(err)
	}
	return row.toModel(), nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	row := userToRow(user)
	row.UpdatedAt = time.Now()
	db := r.db.WithContext(ctx)
	res := db.
		Model(&UserRow{ID: user.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return translateUserError(res.Error)
	}
	// MySQL counts changed rows, so zero can still mean an identical row exists.
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&UserRow{}).Where("id = ?", user.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check user existence: %w", err)
		}
		if n == 0 {
			return apperrors.ErrNotFound
		}
	}
	user.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&UserRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var rows []UserRow
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}
	return users, nil
}

func translateUserError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrDuplicateCredential
	default:
		return err
	}
}
