package models

import (
	"time"

	"github.com/storebridge/backend/internal/domain/integration"
)

// SyncLogModel is the persistence model for sync audit trail entries.
type SyncLogModel struct {
	ID        int64                     `gorm:"primaryKey;autoIncrement"`
	SyncType  integration.SyncType      `gorm:"type:varchar(20);not null;index:idx_sync_logs_type"`
	LocalID   int64                     `gorm:"column:wc_id;not null;index:idx_sync_logs_local"`
	RemoteID  int64                     `gorm:"column:dolibarr_id;index:idx_sync_logs_remote"`
	Status    integration.SyncStatus    `gorm:"type:varchar(20);not null;index:idx_sync_logs_status"`
	Message   string                    `gorm:"type:text"`
	Direction integration.SyncDirection `gorm:"type:varchar(10);not null;default:'push'"`
	CreatedAt time.Time                 `gorm:"not null;index:idx_sync_logs_created"`
	UpdatedAt time.Time                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLogEntry.
func (m *SyncLogModel) ToDomain() *integration.SyncLogEntry {
	return &integration.SyncLogEntry{
		ID:        m.ID,
		SyncType:  m.SyncType,
		LocalID:   m.LocalID,
		RemoteID:  m.RemoteID,
		Status:    m.Status,
		Message:   m.Message,
		Direction: m.Direction,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncLogEntry.
func (m *SyncLogModel) FromDomain(e *integration.SyncLogEntry) {
	m.ID = e.ID
	m.SyncType = e.SyncType
	m.LocalID = e.LocalID
	m.RemoteID = e.RemoteID
	m.Status = e.Status
	m.Message = e.Message
	m.Direction = e.Direction
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// CrossReferenceModel is the persistence model for local-to-remote id mappings.
type CrossReferenceModel struct {
	ID         int64                  `gorm:"primaryKey;autoIncrement"`
	EntityType integration.SyncType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_cross_refs_entity,priority:1"`
	LocalID    int64                  `gorm:"column:wc_id;not null;uniqueIndex:idx_cross_refs_entity,priority:2"`
	RemoteID   int64                  `gorm:"column:dolibarr_id;not null;index:idx_cross_refs_remote"`
	LastSyncAt time.Time              `gorm:"not null"`
	Status     integration.SyncStatus `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time              `gorm:"not null"`
	UpdatedAt  time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CrossReferenceModel) TableName() string {
	return "entity_cross_references"
}

// ToDomain converts the persistence model to a domain CrossReference.
func (m *CrossReferenceModel) ToDomain() *integration.CrossReference {
	return &integration.CrossReference{
		EntityType: m.EntityType,
		LocalID:    m.LocalID,
		RemoteID:   m.RemoteID,
		LastSyncAt: m.LastSyncAt,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain CrossReference.
func (m *CrossReferenceModel) FromDomain(ref *integration.CrossReference) {
	m.EntityType = ref.EntityType
	m.LocalID = ref.LocalID
	m.RemoteID = ref.RemoteID
	m.LastSyncAt = ref.LastSyncAt
	m.Status = ref.Status
}

// OrderSyncHistoryModel is the persistence model for per-order sync summaries.
type OrderSyncHistoryModel struct {
	ID              int64                  `gorm:"primaryKey;autoIncrement"`
	OrderID         int64                  `gorm:"not null;uniqueIndex:idx_order_history_order"`
	RemoteOrderID   int64                  `gorm:"column:dolibarr_order_id"`
	RemoteInvoiceID int64                  `gorm:"column:dolibarr_invoice_id"`
	Status          integration.SyncStatus `gorm:"column:sync_status;type:varchar(20);not null;index:idx_order_history_status"`
	SyncType        string                 `gorm:"type:varchar(20)"`
	ErrorMessage    string                 `gorm:"type:text"`
	LastSyncAt      time.Time              `gorm:"not null"`
	CreatedAt       time.Time              `gorm:"not null"`
	UpdatedAt       time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSyncHistoryModel) TableName() string {
	return "order_sync_history"
}

// ToDomain converts the persistence model to a domain OrderSyncHistory.
func (m *OrderSyncHistoryModel) ToDomain() *integration.OrderSyncHistory {
	return &integration.OrderSyncHistory{
		OrderID:         m.OrderID,
		RemoteOrderID:   m.RemoteOrderID,
		RemoteInvoiceID: m.RemoteInvoiceID,
		Status:          m.Status,
		SyncType:        m.SyncType,
		ErrorMessage:    m.ErrorMessage,
		LastSyncAt:      m.LastSyncAt,
	}
}

// FromDomain populates the persistence model from a domain OrderSyncHistory.
func (m *OrderSyncHistoryModel) FromDomain(h *integration.OrderSyncHistory) {
	m.OrderID = h.OrderID
	m.RemoteOrderID = h.RemoteOrderID
	m.RemoteInvoiceID = h.RemoteInvoiceID
	m.Status = h.Status
	m.SyncType = h.SyncType
	m.ErrorMessage = h.ErrorMessage
	m.LastSyncAt = h.LastSyncAt
}
