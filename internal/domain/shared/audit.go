package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is one row in the audit trail. It captures who did what to
// which resource, with optional before/after state. Records are written by
// the audit event handler off the event bus, never inline in a business
// operation, and are append-only.
type AuditRecord struct {
	ID            uuid.UUID
	Action        string
	ActorID       string
	ResourceType  string
	ResourceID    uuid.UUID
	ResourceName  string
	PreviousState map[string]any
	NewState      map[string]any
	Metadata      map[string]any
	CreatedAt     time.Time
}

// NewAuditRecord creates an audit record
func NewAuditRecord(action, actorID, resourceType string, resourceID uuid.UUID, resourceName string) (*AuditRecord, error) {
	if action == "" {
		return nil, NewDomainError("INVALID_ACTION", "Audit action cannot be empty")
	}
	if resourceType == "" {
		return nil, NewDomainError("INVALID_RESOURCE_TYPE", "Audit resource type cannot be empty")
	}
	if actorID == "" {
		actorID = "system"
	}
	return &AuditRecord{
		ID:           uuid.New(),
		Action:       action,
		ActorID:      actorID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		CreatedAt:    time.Now(),
	}, nil
}

// WithStates attaches the before/after state of the resource
func (r *AuditRecord) WithStates(previous, current map[string]any) *AuditRecord {
	r.PreviousState = previous
	r.NewState = current
	return r
}

// WithMetadata attaches free-form context to the record
func (r *AuditRecord) WithMetadata(metadata map[string]any) *AuditRecord {
	r.Metadata = metadata
	return r
}

// AuditTrailRepository defines the interface for audit trail persistence.
// The trail is append-only.
type AuditTrailRepository interface {
	// Append stores one audit record
	Append(ctx context.Context, record *AuditRecord) error

	// FindByResource returns a resource's audit trail, newest first
	FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID, filter Filter) ([]AuditRecord, error)

	// FindAll finds audit records with filtering and pagination
	FindAll(ctx context.Context, filter Filter) ([]AuditRecord, error)

	// Count counts audit records matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)
}
