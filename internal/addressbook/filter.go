package addressbook

import (
	"strings"

	"shipdesk/senderterm/internal/models"
)

// Filter returns the records matching term, in collection order. A record matches
// when any of its name, phone, city, street address or email contains term,
// ignoring case. An empty term matches everything.
func Filter(records []models.AddressRecord, term string) []models.AddressRecord {
	filtered := make([]models.AddressRecord, 0, len(records))
	query := strings.ToLower(term)

	for _, r := range records {
		if matches(r, query) {
			filtered = append(filtered, r)
		}
	}

	return filtered
}

func matches(r models.AddressRecord, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.DisplayName), query) ||
		strings.Contains(strings.ToLower(r.Phone), query) ||
		strings.Contains(strings.ToLower(r.City), query) ||
		strings.Contains(strings.ToLower(r.StreetAddress), query) ||
		strings.Contains(strings.ToLower(r.Email), query)
}

// Paginate returns the first PageSize records unless expanded.
func Paginate(filtered []models.AddressRecord, expanded bool) []models.AddressRecord {
	if expanded || len(filtered) <= PageSize {
		return filtered
	}
	return filtered[:PageSize]
}

// HasMore reports whether the more/less control should be offered.
func HasMore(filtered []models.AddressRecord) bool {
	return len(filtered) > PageSize
}
