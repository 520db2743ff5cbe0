package addressbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdesk/senderterm/internal/models"
)

func sampleRecords() []models.AddressRecord {
	return models.MapAddresses([]models.RawAddress{
		{ID: "1", Alias: "Ali", Phone: "0500", City: "Riyadh", Location: "St1"},
		{ID: "2", Alias: "Sara", Phone: "0555", City: "Jeddah", Location: "King Rd"},
		{ID: "3", Alias: "Warehouse", Phone: "0111", City: "Dammam", Location: "Port Zone"},
		{ID: "4", Alias: "Khalid", City: "Riyadh"},
	}, "a@x.com", 1)
}

func TestFilter_EmptyTermMatchesAll(t *testing.T) {
	records := sampleRecords()
	assert.Equal(t, records, Filter(records, ""))
}

func TestFilter_CaseInsensitiveAnyField(t *testing.T) {
	records := sampleRecords()

	cases := map[string][]string{
		"ali":     {"1", "4"}, // Khalid
		"sara":    {"2"},
		"RIYADH":  {"1", "4"},
		"0555":    {"2"},
		"port":    {"3"},
		"a@x.com": {"1", "2", "3", "4"},
		"nomatch": {},
	}

	for term, want := range cases {
		t.Run(term, func(t *testing.T) {
			got := Filter(records, term)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID.Key())
			}
			assert.Equal(t, want, ids)
		})
	}
}

func TestFilter_SubsequenceAndMatching(t *testing.T) {
	records := sampleRecords()

	for _, term := range []string{"a", "r", "05", "-", "zone", "x"} {
		got := Filter(records, term)

		// every result matches in at least one field
		for _, r := range got {
			assert.True(t, matches(r, strings.ToLower(term)), "record %s should match %q", r.ID, term)
		}

		// results appear in collection order
		pos := -1
		for _, r := range got {
			idx := -1
			for i := range records {
				if records[i].ID == r.ID {
					idx = i
				}
			}
			require.Greater(t, idx, pos, "order must be preserved for %q", term)
			pos = idx
		}
	}
}

func TestFilter_PlaceholderIsSearchable(t *testing.T) {
	got := Filter(sampleRecords(), "-")
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ID.Key())
}

func TestPaginate(t *testing.T) {
	records := models.MapAddresses(rawAddresses(7), "", 1)

	collapsed := Paginate(records, false)
	assert.Len(t, collapsed, PageSize)
	assert.Equal(t, records[:PageSize], collapsed)

	assert.Len(t, Paginate(records, true), 7)
	assert.True(t, HasMore(records))

	short := records[:PageSize]
	assert.Len(t, Paginate(short, false), PageSize)
	assert.False(t, HasMore(short))

	assert.Empty(t, Paginate(nil, false))
}
