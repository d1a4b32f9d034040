package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// JSONMap is a free-form map stored as JSONB
type JSONMap map[string]any

// Value implements driver.Valuer for JSONB storage
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// AuditRecordModel is the persistence model for the append-only audit trail
type AuditRecordModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Action        string    `gorm:"type:varchar(100);not null;index"`
	ActorID       string    `gorm:"type:varchar(100);not null"`
	ResourceType  string    `gorm:"type:varchar(100);not null;index:idx_audit_resource,priority:1"`
	ResourceID    uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_resource,priority:2"`
	ResourceName  string    `gorm:"type:varchar(255)"`
	PreviousState JSONMap   `gorm:"type:jsonb"`
	NewState      JSONMap   `gorm:"type:jsonb"`
	Metadata      JSONMap   `gorm:"type:jsonb"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditRecordModel) TableName() string {
	return "audit_log"
}

// ToDomain converts the persistence model to a domain AuditRecord
func (m *AuditRecordModel) ToDomain() *shared.AuditRecord {
	return &shared.AuditRecord{
		ID:            m.ID,
		Action:        m.Action,
		ActorID:       m.ActorID,
		ResourceType:  m.ResourceType,
		ResourceID:    m.ResourceID,
		ResourceName:  m.ResourceName,
		PreviousState: m.PreviousState,
		NewState:      m.NewState,
		Metadata:      m.Metadata,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain AuditRecord
func (m *AuditRecordModel) FromDomain(r *shared.AuditRecord) {
	m.ID = r.ID
	m.Action = r.Action
	m.ActorID = r.ActorID
	m.ResourceType = r.ResourceType
	m.ResourceID = r.ResourceID
	m.ResourceName = r.ResourceName
	m.PreviousState = r.PreviousState
	m.NewState = r.NewState
	m.Metadata = r.Metadata
	m.CreatedAt = r.CreatedAt
}

// AuditRecordModelFromDomain creates a new persistence model from a domain AuditRecord
func AuditRecordModelFromDomain(r *shared.AuditRecord) *AuditRecordModel {
	m := &AuditRecordModel{}
	m.FromDomain(r)
	return m
}
