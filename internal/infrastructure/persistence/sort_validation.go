package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// withCommon returns fields plus the columns every table carries
func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// CommonSortFields contains fields common to every table
var CommonSortFields = withCommon()

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = withCommon("name", "sku", "slug", "type", "status", "regular_price", "sale_price", "stock_quantity", "remote_id")

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = withCommon("name", "slug", "parent_id", "count", "remote_id")

// AttributeSortFields contains allowed sort fields for attributes
var AttributeSortFields = withCommon("name", "slug", "type", "remote_id")

// TermSortFields contains allowed sort fields for attribute terms
var TermSortFields = withCommon("name", "slug", "menu_order", "attribute_id", "remote_id")

// TagSortFields contains allowed sort fields for tags
var TagSortFields = withCommon("name", "slug", "count", "remote_id")

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = withCommon("name", "type", "email", "phone")

// EmployeeSortFields contains allowed sort fields for employees
var EmployeeSortFields = withCommon("first_name", "last_name", "email", "role", "hired_at", "active")

// QuoteSortFields contains allowed sort fields for quotes
var QuoteSortFields = withCommon("ref", "client_id", "status", "valid_until", "tht", "ttc")

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = withCommon("ref", "client_id", "quote_id", "status", "due_date", "paid_at", "tht", "ttc")

// Equality filter whitelists per table
var (
	ProductFilterFields   = map[string]bool{"type": true, "status": true, "sku": true, "manage_stock": true, "remote_id": true}
	CategoryFilterFields  = map[string]bool{"parent_id": true, "slug": true, "remote_id": true}
	AttributeFilterFields = map[string]bool{"slug": true, "type": true, "remote_id": true}
	TermFilterFields      = map[string]bool{"attribute_id": true, "slug": true, "remote_id": true}
	TagFilterFields       = map[string]bool{"slug": true, "remote_id": true}
	ClientFilterFields    = map[string]bool{"type": true, "email": true, "tax_id": true}
	EmployeeFilterFields  = map[string]bool{"role": true, "active": true, "email": true}
	QuoteFilterFields     = map[string]bool{"status": true, "client_id": true}
	InvoiceFilterFields   = map[string]bool{"status": true, "client_id": true, "quote_id": true}
)
