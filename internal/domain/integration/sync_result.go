package integration

// Ref identifies a local entity for a sync request: either by id alone or
// with the already-loaded entity attached. Carrying the entity avoids a
// second storefront read when the caller just fetched it.
type Ref[T any] struct {
	// ID is the storefront entity id
	ID int64
	// Entity is the optional pre-loaded entity
	Entity *T
}

// CustomerRef identifies a customer to sync.
type CustomerRef = Ref[Customer]

// OrderRef identifies an order to sync.
type OrderRef = Ref[Order]

// ProductRef identifies a product to sync.
type ProductRef = Ref[Product]

// SyncResult is the outcome of syncing a single entity.
type SyncResult struct {
	// Status is success, error or skipped
	Status SyncStatus
	// Message is a human readable outcome description
	Message string
	// RemoteID is the remote entity id when one is known
	RemoteID int64
	// Action reports whether the push created or updated the remote entity
	Action SyncAction
}

// Succeeded reports whether the sync established or refreshed the remote entity.
func (r SyncResult) Succeeded() bool {
	return r.Status == SyncStatusSuccess
}

// Skipped reports whether the entity was ineligible and left untouched.
func (r SyncResult) Skipped() bool {
	return r.Status == SyncStatusSkipped
}

// ItemResult is one entry in a bulk outcome.
type ItemResult struct {
	// LocalID is the storefront entity id
	LocalID int64
	// Result is the per-entity outcome
	Result SyncResult
}

// BatchResult aggregates a bulk sync run.
type BatchResult struct {
	// Total is how many entities were considered
	Total int
	// Synced is how many succeeded
	Synced int
	// Errors is how many failed
	Errors int
	// Skipped is how many were ineligible
	Skipped int
	// Details holds the per-entity outcomes
	Details []ItemResult
}

// Add folds a per-entity outcome into the aggregate.
func (b *BatchResult) Add(localID int64, r SyncResult) {
	b.Total++
	switch r.Status {
	case SyncStatusSuccess:
		b.Synced++
	case SyncStatusSkipped:
		b.Skipped++
	default:
		b.Errors++
	}
	b.Details = append(b.Details, ItemResult{LocalID: localID, Result: r})
}

// BatchRunReport summarizes a chunked batch-runner pass. Processed can be
// lower than Total when the run stopped early on memory pressure.
type BatchRunReport struct {
	Total     int
	Processed int
	Errors    int
	// Stopped reports an early stop before all chunks ran
	Stopped bool
}
