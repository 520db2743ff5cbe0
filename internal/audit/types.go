package audit

import (
	"time"
)

// AuditAction represents the type of change made to the address book
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog represents a single audit log entry
type AuditLog struct {
	ID        string                 `json:"id"`
	AddressID string                 `json:"address_id,omitempty"`
	Action    AuditAction            `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Owner     string                 `json:"owner,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
