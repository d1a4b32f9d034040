// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - ordering.go: Order, order item, cart line and status history models
// - ledger.go: Append-only ledger entry model
// - invoicing.go: Invoice model with JSONB items and payment records
// - audit.go: Append-only audit trail model
//
// The outbox table is persisted through the shared.OutboxEntry domain type
// directly by the event infrastructure.
package models
