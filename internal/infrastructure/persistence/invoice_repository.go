package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/invoicing"
	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, events: events}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID returns all invoices for an order
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(rows), nil
}

// FindOpenByOrderAndType finds the non-cancelled invoice of the given type
// for an order, or shared.ErrNotFound when none exists
func (r *GormInvoiceRepository) FindOpenByOrderAndType(ctx context.Context, orderID uuid.UUID, invoiceType invoicing.InvoiceType) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ? AND status <> ?", orderID, invoiceType, invoicing.InvoiceStatusCancelled).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(rows), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain
// events to the outbox table in the same transaction
func (r *GormInvoiceRepository) SaveWithLockAndEvents(ctx context.Context, invoice *invoicing.Invoice, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database. Take errors on zero rows, so a
		// concurrently deleted invoice surfaces as not-found rather than as
		// a version conflict.
		var currentVersion int
		if err := tx.Model(&models.InvoiceModel{}).
			Where("id = ?", invoice.ID).
			Select("version").
			Take(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Check version matches
		if currentVersion != invoice.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		// Increment version
		invoice.Version++
		invoice.UpdatedAt = time.Now()

		model := models.InvoiceModelFromDomain(invoice)

		// Update invoice with version check
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":       model.Status,
				"amount_paid":  model.AmountPaid,
				"amount_due":   model.AmountDue,
				"payments":     model.Payments,
				"due_date":     model.DueDate,
				"notes":        model.Notes,
				"document_url": model.DocumentURL,
				"version":      model.Version,
				"updated_at":   model.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		if len(events) == 0 || r.events == nil {
			return nil
		}
		return r.events.SaveEvents(ctx, tx, events...)
	})
}

// ExistsOpenByOrderAndType checks the duplicate guard: whether a
// non-cancelled invoice of this type already exists for the order
func (r *GormInvoiceRepository) ExistsOpenByOrderAndType(ctx context.Context, orderID uuid.UUID, invoiceType invoicing.InvoiceType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("order_id = ? AND type = ? AND status <> ?", orderID, invoiceType, invoicing.InvoiceStatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize aggregates all invoices by status and type
func (r *GormInvoiceRepository) Summarize(ctx context.Context) (*invoicing.Summary, error) {
	summary := &invoicing.Summary{}

	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COUNT(*) AS total_count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(amount_paid), 0) AS amount_paid, COALESCE(SUM(amount_due), 0) AS amount_due").
		Scan(summary).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Group("status").
		Order("status ASC").
		Scan(&summary.ByStatus).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(amount_paid), 0) AS amount_paid, COALESCE(SUM(amount_due), 0) AS amount_due").
		Group("type").
		Order("type ASC").
		Scan(&summary.ByType).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// GenerateInvoiceNumber generates the next unique number for the type.
// Customer invoices use INV-YYYY-NNNNN, manufacturer invoices MINV-YYYY-NNNNN.
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, invoiceType invoicing.InvoiceType) (string, error) {
	year := time.Now().Year()
	base := "INV"
	if invoiceType == invoicing.InvoiceTypeManufacturer {
		base = "MINV"
	}
	prefix := fmt.Sprintf("%s-%d-", base, year)

	// Get the highest invoice number for this year and type
	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &lastNumber).Error
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

	invoiceNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			invoiceNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByInvoiceNumber(ctx, invoiceNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return invoiceNumber, nil
}

// existsByInvoiceNumber checks if an invoice number is already taken
func (r *GormInvoiceRepository) existsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issue_date <= ?", *filter.ToDate)
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR order_number ILIKE ? OR customer->>'name' ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	return query
}

// toDomainInvoices converts persistence rows to domain invoices
func toDomainInvoices(rows []models.InvoiceModel) []invoicing.Invoice {
	invoices := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
