package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/ledger"
	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/infrastructure/persistence/models"
)

// GormLedgerRepository implements ledger.LedgerRepository using GORM. The
// ledger is append-only: nothing here updates or deletes rows.
type GormLedgerRepository struct {
	db     *gorm.DB
	events shared.OutboxEventSaver
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB, events shared.OutboxEventSaver) *GormLedgerRepository {
	return &GormLedgerRepository{db: db, events: events}
}

// FindByID finds a single entry
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID returns all entries for an order, oldest first
func (r *GormLedgerRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ledger.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLedgerEntries(rows), nil
}

// FindByOrderAndType returns an order's entries of one type
func (r *GormLedgerRepository) FindByOrderAndType(ctx context.Context, orderID uuid.UUID, entryType ledger.EntryType) ([]ledger.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ?", orderID, entryType).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLedgerEntries(rows), nil
}

// FindAll finds entries with filtering and pagination
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter ledger.EntryFilter) ([]ledger.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLedgerEntries(rows), nil
}

// AppendPosting atomically appends a batch of entries under an idempotency
// key and persists the outbox events in the same transaction. The first
// entry of the batch carries the posting key; its unique index turns a
// replayed batch into shared.ErrAlreadyExists even under concurrent writers.
func (r *GormLedgerRepository) AppendPosting(ctx context.Context, postingKey string, entries []*ledger.LedgerEntry, events []shared.DomainEvent) error {
	if len(entries) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if postingKey != "" {
			var count int64
			if err := tx.Model(&models.LedgerEntryModel{}).
				Where("posting_key = ?", postingKey).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.ErrAlreadyExists
			}
		}

		for i, entry := range entries {
			model := models.LedgerEntryModelFromDomain(entry)
			if i == 0 {
				model.PostingKey = postingKey
			} else {
				model.PostingKey = ""
			}
			if err := tx.Create(model).Error; err != nil {
				if isUniqueViolation(err) {
					return shared.ErrAlreadyExists
				}
				return err
			}
		}

		if len(events) == 0 || r.events == nil {
			return nil
		}
		return r.events.SaveEvents(ctx, tx, events...)
	})
}

// ExistsByOrderAndType checks whether an order already has an entry of the
// given type
func (r *GormLedgerRepository) ExistsByOrderAndType(ctx context.Context, orderID uuid.UUID, entryType ledger.EntryType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("order_id = ? AND type = ?", orderID, entryType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByPostingKey checks whether a posting key was already used
func (r *GormLedgerRepository) ExistsByPostingKey(ctx context.Context, postingKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("posting_key = ?", postingKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter ledger.EntryFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SummarizeByType groups entries by type within an optional date range,
// returning count and signed total per type
func (r *GormLedgerRepository) SummarizeByType(ctx context.Context, from, to *time.Time) ([]ledger.TypeSummary, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Order("type ASC")

	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var summaries []ledger.TypeSummary
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// applyFilter applies filter options to the query
func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLedgerRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.EntryFilter) *gorm.DB {
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}

	return query
}

// isUniqueViolation reports whether err came from a unique constraint
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

// toDomainLedgerEntries converts persistence rows to domain entries
func toDomainLedgerEntries(rows []models.LedgerEntryModel) []ledger.LedgerEntry {
	entries := make([]ledger.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormLedgerRepository implements LedgerRepository
var _ ledger.LedgerRepository = (*GormLedgerRepository)(nil)
