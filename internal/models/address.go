package models

import (
	"fmt"
	"strings"
)

const (
	// Placeholder replaces text fields the store left empty.
	Placeholder = "-"

	// DefaultCountry is used for edit and create payloads when a record has none.
	DefaultCountry = "السعودية"
)

// Identity distinguishes one address record from another. The zero value means
// "no record".
//
// Store-assigned identities compare equal across refreshes. Positional fallback
// identities carry the generation (fetch sequence) that produced them, so they
// never match an identity from a different refresh.
type Identity struct {
	key   string
	gen   uint64
	pos   int
	valid bool
}

func StoreIdentity(key string) Identity {
	if key == "" {
		return Identity{}
	}
	return Identity{key: key, valid: true}
}

func fallbackIdentity(gen uint64, pos int) Identity {
	return Identity{gen: gen, pos: pos, valid: true}
}

// Key returns the store's primary key, or "" for a positional identity.
func (id Identity) Key() string {
	return id.key
}

// Assigned reports whether the store has assigned this identity.
func (id Identity) Assigned() bool {
	return id.key != ""
}

func (id Identity) IsZero() bool {
	return !id.valid
}

func (id Identity) String() string {
	switch {
	case !id.valid:
		return "<none>"
	case id.key != "":
		return id.key
	default:
		return fmt.Sprintf("#%d@%d", id.pos, id.gen)
	}
}

// AddressRecord is the canonical shape of a sender address.
type AddressRecord struct {
	ID            Identity
	DisplayName   string
	Phone         string
	City          string
	StreetAddress string
	Email         string
	Country       string
}

// Draft returns the full edit payload for the record, as the edit form prefills it.
// Placeholders become empty values so they are never written back.
func (r AddressRecord) Draft() AddressDraft {
	country := r.Country
	if country == "" {
		country = DefaultCountry
	}
	return AddressDraft{
		Alias:    withoutPlaceholder(r.DisplayName),
		Location: withoutPlaceholder(r.StreetAddress),
		Phone:    withoutPlaceholder(r.Phone),
		City:     withoutPlaceholder(r.City),
		Country:  country,
	}
}

// RawAddress is an address entry as the store returns it.
type RawAddress struct {
	ID       string `json:"_id,omitempty"`
	Alias    string `json:"alias,omitempty"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Profile is the owning account's view of its address book.
type Profile struct {
	Email     string       `json:"email"`
	Addresses []RawAddress `json:"addresses"`
}

// AddressDraft is the payload for creating an address and the full field set for
// editing one. Required-field checks belong to the form that builds it.
type AddressDraft struct {
	Alias    string `json:"alias" validate:"required"`
	Location string `json:"location" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	City     string `json:"city" validate:"required"`
	Country  string `json:"country,omitempty"`
}

// Normalize trims surrounding whitespace and fills in the default country.
func (d AddressDraft) Normalize() AddressDraft {
	d.Alias = strings.TrimSpace(d.Alias)
	d.Location = strings.TrimSpace(d.Location)
	d.Phone = strings.TrimSpace(d.Phone)
	d.City = strings.TrimSpace(d.City)
	d.Country = strings.TrimSpace(d.Country)
	if d.Country == "" {
		d.Country = DefaultCountry
	}
	return d
}

// Fields converts the draft into a full update.
func (d AddressDraft) Fields() AddressFields {
	return AddressFields{
		Alias:    &d.Alias,
		Location: &d.Location,
		Phone:    &d.Phone,
		City:     &d.City,
		Country:  &d.Country,
	}
}

// AddressFields is a partial update; nil fields are left unchanged by the store.
type AddressFields struct {
	Alias    *string `json:"alias,omitempty"`
	Location *string `json:"location,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	City     *string `json:"city,omitempty"`
	Country  *string `json:"country,omitempty"`
}

func (f AddressFields) IsEmpty() bool {
	return f.Alias == nil && f.Location == nil && f.Phone == nil && f.City == nil && f.Country == nil
}

// Apply writes the set fields onto a raw store entry.
func (f AddressFields) Apply(raw *RawAddress) {
	if f.Alias != nil {
		raw.Alias = *f.Alias
	}
	if f.Location != nil {
		raw.Location = *f.Location
	}
	if f.Phone != nil {
		raw.Phone = *f.Phone
	}
	if f.City != nil {
		raw.City = *f.City
	}
	if f.Country != nil {
		raw.Country = *f.Country
	}
}

// MapAddresses normalizes raw store entries into canonical records, in store order.
// Entries without a store key get a positional identity scoped to generation.
func MapAddresses(raw []RawAddress, ownerEmail string, generation uint64) []AddressRecord {
	records := make([]AddressRecord, 0, len(raw))
	email := orPlaceholder(ownerEmail)

	for i, entry := range raw {
		id := StoreIdentity(entry.ID)
		if id.IsZero() {
			id = fallbackIdentity(generation, i)
		}

		records = append(records, AddressRecord{
			ID:            id,
			DisplayName:   orPlaceholder(entry.Alias),
			Phone:         orPlaceholder(entry.Phone),
			City:          orPlaceholder(entry.City),
			StreetAddress: orPlaceholder(entry.Location),
			Email:         email,
			Country:       entry.Country,
		})
	}

	return records
}

// CountFallbacks returns how many records carry positional identities.
func CountFallbacks(records []AddressRecord) int {
	n := 0
	for _, r := range records {
		if !r.ID.Assigned() {
			n++
		}
	}
	return n
}

// FindByID returns the record with the given identity, or nil.
func FindByID(records []AddressRecord, id Identity) *AddressRecord {
	if id.IsZero() {
		return nil
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

func withoutPlaceholder(s string) string {
	if s == Placeholder {
		return ""
	}
	return s
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
