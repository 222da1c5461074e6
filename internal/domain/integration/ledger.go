package integration

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// SyncType identifies which kind of entity a sync operation covers.
type SyncType string

const (
	SyncTypeCustomer  SyncType = "customer"
	SyncTypeOrder     SyncType = "order"
	SyncTypeProduct   SyncType = "product"
	SyncTypeInventory SyncType = "inventory"
)

// IsValid checks if the sync type is valid
func (t SyncType) IsValid() bool {
	switch t {
	case SyncTypeCustomer, SyncTypeOrder, SyncTypeProduct, SyncTypeInventory:
		return true
	}
	return false
}

// String returns the string representation
func (t SyncType) String() string {
	return string(t)
}

// SyncStatus is the outcome of a sync attempt.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
	SyncStatusSkipped SyncStatus = "skipped"
)

// IsValid checks if the sync status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSuccess, SyncStatusError, SyncStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation
func (s SyncStatus) String() string {
	return string(s)
}

// SyncDirection records which way the data flowed.
type SyncDirection string

const (
	// DirectionPush moves storefront data to the remote ERP
	DirectionPush SyncDirection = "push"
	// DirectionPull moves remote ERP data into the storefront
	DirectionPull SyncDirection = "pull"
)

// String returns the string representation
func (d SyncDirection) String() string {
	return string(d)
}

// SyncAction says whether a push created or updated the remote entity.
type SyncAction string

const (
	ActionCreated SyncAction = "created"
	ActionUpdated SyncAction = "updated"
)

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// SyncLogEntry is one row of the sync audit trail.
type SyncLogEntry struct {
	// ID is the auto-assigned entry id
	ID int64
	// SyncType is the entity kind the attempt covered
	SyncType SyncType
	// LocalID is the storefront entity id
	LocalID int64
	// RemoteID is the remote entity id, 0 when none was established
	RemoteID int64
	// Status is the outcome
	Status SyncStatus
	// Message is a human readable outcome description
	Message string
	// Direction is the data flow direction
	Direction SyncDirection
	// CreatedAt is when the entry was written
	CreatedAt time.Time
	// UpdatedAt is when the entry was last updated
	UpdatedAt time.Time
}

// CrossReference links a local entity to its remote counterpart.
// RemoteID is only ever set after the remote confirmed a create or update.
type CrossReference struct {
	// EntityType is the entity kind
	EntityType SyncType
	// LocalID is the storefront entity id
	LocalID int64
	// RemoteID is the confirmed remote entity id
	RemoteID int64
	// LastSyncAt is when the entity was last successfully pushed
	LastSyncAt time.Time
	// Status is the status of the last attempt
	Status SyncStatus
}

// OrderSyncHistory is the per-order sync summary, one row per order.
type OrderSyncHistory struct {
	// OrderID is the storefront order id
	OrderID int64
	// RemoteOrderID is the remote order id, 0 before the first success
	RemoteOrderID int64
	// RemoteInvoiceID is the remote invoice id when one was generated
	RemoteInvoiceID int64
	// Status is the latest outcome
	Status SyncStatus
	// SyncType distinguishes manual from automatic runs
	SyncType string
	// ErrorMessage holds the latest failure reason, empty on success
	ErrorMessage string
	// LastSyncAt is when the order was last attempted
	LastSyncAt time.Time
}

// SyncLogFilter narrows ledger queries. Zero values mean no constraint.
type SyncLogFilter struct {
	SyncType  SyncType
	Status    SyncStatus
	LocalID   int64
	Direction SyncDirection
	// Page is 1-based
	Page     int
	PageSize int
}

// SyncLogPatch is the in-place change applied to pending ledger entries
// once the outcome of an attempt is known.
type SyncLogPatch struct {
	RemoteID int64
	Status   SyncStatus
	Message  string
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// SyncLogRepository persists the audit trail.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *SyncLogEntry) error
	// Update patches the pending entries matching (syncType, localID) in
	// place and returns how many rows changed. An attempt that opens a
	// pending entry finalizes it here instead of appending a second row.
	Update(ctx context.Context, syncType SyncType, localID int64, patch SyncLogPatch) (int64, error)
	Query(ctx context.Context, filter SyncLogFilter) ([]SyncLogEntry, int64, error)
	// Purge deletes entries older than the given number of days and
	// returns how many were removed.
	Purge(ctx context.Context, olderThanDays int) (int64, error)
}

// CrossReferenceRepository persists local-to-remote id mappings.
type CrossReferenceRepository interface {
	// Find returns ErrCrossReferenceNotFound when no mapping exists.
	Find(ctx context.Context, entityType SyncType, localID int64) (*CrossReference, error)
	// Save inserts or replaces the mapping for (entityType, localID).
	Save(ctx context.Context, ref *CrossReference) error
	Delete(ctx context.Context, entityType SyncType, localID int64) error
	// ListByType returns every mapping of one entity type.
	ListByType(ctx context.Context, entityType SyncType) ([]CrossReference, error)
}

// OrderSyncHistoryRepository persists per-order sync summaries.
type OrderSyncHistoryRepository interface {
	// Upsert replaces the existing row for the order, if any.
	Upsert(ctx context.Context, h *OrderSyncHistory) error
	// Find returns ErrHistoryNotFound when the order was never synced.
	Find(ctx context.Context, orderID int64) (*OrderSyncHistory, error)
	List(ctx context.Context, status SyncStatus, limit, offset int) ([]OrderSyncHistory, int64, error)
}
