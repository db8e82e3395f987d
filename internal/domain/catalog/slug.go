package catalog

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/atelier/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Syncable is a local record mirrored to the remote catalog
type Syncable interface {
	GetRemoteID() *int64
	NeedsPush() bool
	MarkSynced(remoteID int64, at time.Time)
}

func needsPush(remoteID *int64, updatedAt time.Time, syncedAt *time.Time) bool {
	if remoteID == nil || syncedAt == nil {
		return true
	}
	return updatedAt.After(*syncedAt)
}

// Fold lowercases s and strips diacritics, so "Céramique" matches "ceramique"
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Slugify builds a URL slug the way the remote catalog does for plain names
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Fold(strings.TrimSpace(s)) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func validateName(field, name string, maxLen int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError(field, "%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxLen {
		return shared.NewValidationError(field, "%s cannot exceed %d characters", field, maxLen)
	}
	return nil
}
