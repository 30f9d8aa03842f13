package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
)

// SessionRow is the sessions table.
type SessionRow struct {
	ID        string `gorm:"primaryKey;type:char(36)"`
	UserID    string `gorm:"index;type:char(36);not null"`
	Valid     bool   `gorm:"not null"`
	UserAgent string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SessionRow) TableName() string { return "sessions" }

func (r SessionRow) toModel() model.Session {
	return model.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Valid:     r.Valid,
		UserAgent: r.UserAgent,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository builds a GORM-backed session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, userID, userAgent string) (*model.Session, error) {
	row := SessionRow{
		ID:        uuid.NewString(),
		UserID:    userID,
		Valid:     true,
		UserAgent: userAgent,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s := row.toModel()
	return &s, nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var row SessionRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	s := row.toModel()
	return &s, nil
}

func (r *sessionRepository) Find(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	var rows []SessionRow
	if err := r.db.WithContext(ctx).Scopes(sessionScope(filter)).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	sessions := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toModel())
	}
	return sessions, nil
}

func (r *sessionRepository) UpdateOne(ctx context.Context, filter SessionFilter, patch SessionPatch) (int64, error) {
	id, err := r.firstID(ctx, filter)
	if err != nil || id == "" {
		return 0, err
	}

	updates := map[string]any{}
	if patch.Valid != nil {
		updates["valid"] = *patch.Valid
	}
	if len(updates) == 0 {
		return 1, nil
	}

	if err := r.db.WithContext(ctx).Model(&SessionRow{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return 0, fmt.Errorf("update session: %w", err)
	}
	return 1, nil
}

func (r *sessionRepository) DeleteOne(ctx context.Context, filter SessionFilter) (int64, error) {
	id, err := r.firstID(ctx, filter)
	if err != nil || id == "" {
		return 0, err
	}

	res := r.db.WithContext(ctx).Delete(&SessionRow{}, "id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete session: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// firstID resolves a filter to the id of the first matching session, or ""
// when nothing matches.
func (r *sessionRepository) firstID(ctx context.Context, filter SessionFilter) (string, error) {
	if filter.IsEmpty() {
		return "", ErrEmptyFilter
	}
	var row SessionRow
	err := r.db.WithContext(ctx).Scopes(sessionScope(filter)).Select("id").Order("created_at").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find session: %w", err)
	}
	return row.ID, nil
}

func sessionScope(f SessionFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ID != "" {
			db = db.Where("id = ?", f.ID)
		}
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
		}
		if f.Valid != nil {
			db = db.Where("valid = ?", *f.Valid)
		}
		return db
	}
}

// Migrate creates or updates the tables used by the gorm repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserRow{}, &SessionRow{})
}
