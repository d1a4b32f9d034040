package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormCartRepository implements ordering.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindBySession finds all cart lines for a session, oldest first
func (r *GormCartRepository) FindBySession(ctx context.Context, sessionID string) ([]ordering.CartLine, error) {
	var rows []models.CartLineModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	lines := make([]ordering.CartLine, len(rows))
	for i := range rows {
		lines[i] = *rows[i].ToDomain()
	}
	return lines, nil
}

// FindLineByID finds a single cart line
func (r *GormCartRepository) FindLineByID(ctx context.Context, id uuid.UUID) (*ordering.CartLine, error) {
	var model models.CartLineModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveLine creates or updates a cart line
func (r *GormCartRepository) SaveLine(ctx context.Context, line *ordering.CartLine) error {
	model := models.CartLineModelFromDomain(line)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteLine removes a single cart line
func (r *GormCartRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CartLineModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearSession removes every cart line for a session
func (r *GormCartRepository) ClearSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CartLineModel{}).Error
}

// CountBySession counts the cart lines in a session
func (r *GormCartRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CartLineModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCartRepository implements CartRepository
var _ ordering.CartRepository = (*GormCartRepository)(nil)
