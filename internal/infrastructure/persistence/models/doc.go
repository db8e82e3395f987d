// Package models contains GORM persistence models for aggregates whose
// storage shape differs from the domain shape.
//
// Quotes and invoices keep their client and line snapshots in JSON columns,
// so the domain aggregates stay free of serialization concerns. Plain
// catalog, partner and settings entities are persisted directly.
package models
