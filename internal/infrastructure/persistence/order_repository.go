package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormOrderRepository creates a new GormOrderRepository. The event saver
// persists domain events to the outbox inside the same transaction as the
// aggregate change; it may be nil in tests that don't exercise events.
func NewGormOrderRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormOrderRepository {
	return &GormOrderRepository{db: db, events: events}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its human-readable number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with filtering and pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// FindByStatus finds orders in a given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status ordering.OrderStatus, filter shared.Filter) ([]ordering.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Preload("Items").
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveTx(tx, order)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, order)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain
// events to the outbox table in the same transaction
func (r *GormOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *ordering.Order, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, order); err != nil {
			return err
		}
		return r.saveEvents(ctx, tx, events)
	})
}

// SaveTransition atomically saves a status change together with its history
// entry and outbox events
func (r *GormOrderRepository) SaveTransition(ctx context.Context, order *ordering.Order, entry *ordering.OrderStatusHistoryEntry, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, order); err != nil {
			return err
		}
		if entry != nil {
			if err := tx.Create(models.OrderStatusHistoryModelFromDomain(entry)).Error; err != nil {
				return err
			}
		}
		return r.saveEvents(ctx, tx, events)
	})
}

// CreateFromCheckout atomically inserts a new order with its creation history
// entry, persists the outbox events, and clears the session's cart lines
func (r *GormOrderRepository) CreateFromCheckout(ctx context.Context, order *ordering.Order, entry *ordering.OrderStatusHistoryEntry, sessionID string, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)

		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return err
		}
		for i := range model.Items {
			if err := tx.Create(&model.Items[i]).Error; err != nil {
				return err
			}
		}

		if entry != nil {
			if err := tx.Create(models.OrderStatusHistoryModelFromDomain(entry)).Error; err != nil {
				return err
			}
		}

		if sessionID != "" {
			if err := tx.Where("session_id = ?", sessionID).
				Delete(&models.CartLineModel{}).Error; err != nil {
				return err
			}
		}

		return r.saveEvents(ctx, tx, events)
	})
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.OrderModel{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders in a given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status ordering.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number is already taken
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber generates a unique order number.
// Format: ORD-YYYY-NNNNN (e.g., ORD-2026-00001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d-", year)

	// Get the highest order number for this year
	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &lastNumber).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.ExistsByOrderNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		// If exists, try incrementing until we find a unique one
		for i := 0; i < 100; i++ {
			nextNum++
			orderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByOrderNumber(ctx, orderNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return orderNumber, nil
}

// saveTx saves the order and synchronizes its items within tx
func (r *GormOrderRepository) saveTx(tx *gorm.DB, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)

	if err := tx.Omit("Items").Save(model).Error; err != nil {
		return err
	}

	return r.syncItemsTx(tx, model)
}

// saveWithLockTx performs the optimistic-lock update flow within tx
func (r *GormOrderRepository) saveWithLockTx(tx *gorm.DB, order *ordering.Order) error {
	// Get current version from database. Take errors on zero rows, so a
	// concurrently deleted order surfaces as not-found rather than as a
	// version conflict.
	var currentVersion int
	if err := tx.Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Select("version").
		Take(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	// Check version matches
	if currentVersion != order.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
	}

	// Increment version
	order.Version++
	order.UpdatedAt = time.Now()

	model := models.OrderModelFromDomain(order)

	// Update order with version check
	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"customer":      model.Customer,
			"pricing":       model.Pricing,
			"payment":       model.Payment,
			"placed_at":     model.PlacedAt,
			"shipped_at":    model.ShippedAt,
			"delivered_at":  model.DeliveredAt,
			"refunded_at":   model.RefundedAt,
			"cancelled_at":  model.CancelledAt,
			"cancel_reason": model.CancelReason,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
	}

	return r.syncItemsTx(tx, model)
}

// syncItemsTx deletes removed items and saves the current ones within tx
func (r *GormOrderRepository) syncItemsTx(tx *gorm.DB, model *models.OrderModel) error {
	currentItemIDs := make([]uuid.UUID, len(model.Items))
	for i, item := range model.Items {
		currentItemIDs[i] = item.ID
	}

	// Delete items not in the current list
	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", model.ID).
			Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
	}

	// Save/update remaining items
	for i := range model.Items {
		model.Items[i].OrderID = model.ID
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// saveEvents persists domain events to the outbox within tx
func (r *GormOrderRepository) saveEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if len(events) == 0 || r.events == nil {
		return nil
	}
	return r.events.SaveEvents(ctx, tx, events...)
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search over the order number and the frozen customer block
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer->>'name' ILIKE ? OR customer->>'email' ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "min_total":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("(pricing->>'total')::numeric >= ?", d)
			}
		case "max_total":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("(pricing->>'total')::numeric <= ?", d)
			}
		case "payment_status":
			query = query.Where("payment->>'status' = ?", value)
		}
	}

	return query
}

// toDomainOrders converts persistence rows to domain orders
func toDomainOrders(rows []models.OrderModel) []ordering.Order {
	orders := make([]ordering.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
