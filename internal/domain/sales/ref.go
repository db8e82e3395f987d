package sales

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference prefixes
const (
	QuoteRefPrefix   = "DEV"
	InvoiceRefPrefix = "FAC"
)

// FormatRef builds a reference such as DEV-2026-0007
func FormatRef(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// RefYearPrefix is the common prefix of every reference of a year, e.g. "FAC-2026-"
func RefYearPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// ParseRefSeq extracts the sequence number of a reference; ok is false if
// ref does not carry the given year prefix.
func ParseRefSeq(ref, yearPrefix string) (int, bool) {
	if !strings.HasPrefix(ref, yearPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(ref, yearPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}
