package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormOrderStatusHistoryRepository implements the append-only status history
// store using GORM. History rows are only ever inserted.
type GormOrderStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormOrderStatusHistoryRepository creates a new GormOrderStatusHistoryRepository
func NewGormOrderStatusHistoryRepository(db *gorm.DB) *GormOrderStatusHistoryRepository {
	return &GormOrderStatusHistoryRepository{db: db}
}

// Append stores one history entry
func (r *GormOrderStatusHistoryRepository) Append(ctx context.Context, entry *ordering.OrderStatusHistoryEntry) error {
	model := models.OrderStatusHistoryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByOrderID returns an order's history in chronological order
func (r *GormOrderStatusHistoryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.OrderStatusHistoryEntry, error) {
	var rows []models.OrderStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]ordering.OrderStatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// CountByOrderID counts the history entries for an order
func (r *GormOrderStatusHistoryRepository) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderStatusHistoryModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderStatusHistoryRepository implements OrderStatusHistoryRepository
var _ ordering.OrderStatusHistoryRepository = (*GormOrderStatusHistoryRepository)(nil)
