// Package integration contains the Integration bounded context.
// It defines how the local catalog is reconciled with a remote
// WooCommerce-style store.
//
// Key concepts:
//   - CatalogGateway: port to the remote catalog, one Resource per collection
//   - Remote*: wire records exchanged with the remote store
//   - SyncResult: outcome of one reconciliation run
//
// Adapters implementing the port live in the infrastructure layer.
package integration
