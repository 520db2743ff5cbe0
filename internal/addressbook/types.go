package addressbook

import (
	"context"

	"shipdesk/senderterm/internal/audit"
	"shipdesk/senderterm/internal/models"
)

// PageSize is how many records the collapsed list shows.
const PageSize = 6

// Store is the remote address store. Implementations must be safe for use from
// goroutines other than the one driving the Engine.
type Store interface {
	FetchOwnAddresses(ctx context.Context) (*models.Profile, error)
	CreateAddress(ctx context.Context, draft models.AddressDraft) error
	UpdateAddress(ctx context.Context, id string, fields models.AddressFields) error
	DeleteAddress(ctx context.Context, id string) error
}

// FormWriter is the shipment form the selection is projected onto.
type FormWriter interface {
	SetField(name, value string)
}

// Auditor records successful mutations.
type Auditor interface {
	LogAddressAction(action audit.AuditAction, addressID string, details map[string]interface{}) error
}

type OpKind int

const (
	OpFetch OpKind = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpFetch:
		return "fetch"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type FilterState struct {
	SearchTerm string
	Expanded   bool
}

type PendingDeletion struct {
	Target           models.Identity
	ConfirmationOpen bool
}

type PendingEdit struct {
	Target *models.AddressRecord
	Open   bool
}

// BusyFlags tells the presentation layer which mutations are in flight.
type BusyFlags struct {
	Creating bool
	Updating bool
	Deleting bool
}

// Snapshot is the read-only state the presentation layer renders.
type Snapshot struct {
	Displayed     []models.AddressRecord
	FilteredCount int
	TotalCount    int
	HasMore       bool
	Selected      models.Identity
	Filter        FilterState
	Deletion      PendingDeletion
	Edit          PendingEdit
	Busy          BusyFlags
	Loading       bool
	Loaded        bool
	OwnerEmail    string
}
