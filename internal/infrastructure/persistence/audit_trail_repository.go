package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormAuditTrailRepository implements the append-only audit trail using GORM
type GormAuditTrailRepository struct {
	db *gorm.DB
}

// NewGormAuditTrailRepository creates a new GormAuditTrailRepository
func NewGormAuditTrailRepository(db *gorm.DB) *GormAuditTrailRepository {
	return &GormAuditTrailRepository{db: db}
}

// Append stores one audit record
func (r *GormAuditTrailRepository) Append(ctx context.Context, record *shared.AuditRecord) error {
	model := models.AuditRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByResource returns a resource's audit trail, newest first
func (r *GormAuditTrailRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, filter shared.Filter) ([]shared.AuditRecord, error) {
	var rows []models.AuditRecordModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AuditRecordModel{}).
			Where("resource_type = ? AND resource_id = ?", resourceType, resourceID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAuditRecords(rows), nil
}

// FindAll finds audit records with filtering and pagination
func (r *GormAuditTrailRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shared.AuditRecord, error) {
	var rows []models.AuditRecordModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AuditRecordModel{}),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAuditRecords(rows), nil
}

// Count counts audit records matching the filter
func (r *GormAuditTrailRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.AuditRecordModel{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAuditTrailRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Audit trails read newest first
	orderBy := ValidateSortField(filter.OrderBy, AuditRecordSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAuditTrailRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("action ILIKE ? OR resource_name ILIKE ? OR actor_id ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "action":
			query = query.Where("action = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		case "resource_type":
			query = query.Where("resource_type = ?", value)
		}
	}

	return query
}

// toDomainAuditRecords converts persistence rows to domain records
func toDomainAuditRecords(rows []models.AuditRecordModel) []shared.AuditRecord {
	records := make([]shared.AuditRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records
}

// Ensure GormAuditTrailRepository implements AuditTrailRepository
var _ shared.AuditTrailRepository = (*GormAuditTrailRepository)(nil)
