// Package integration contains the Integration bounded context.
// This context manages the synchronization of storefront data with the
// Dolibarr ERP: customers, orders, products and stock levels.
//
// Key concepts:
//   - ERPClient: Port interface for the remote Dolibarr REST API
//   - LocalStore: Port interface for the storefront's own data
//   - CrossReference: Persistent mapping between a local entity and its remote counterpart
//   - SyncLogEntry: Audit trail of every sync attempt
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
