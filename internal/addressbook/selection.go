package addressbook

import (
	"shipdesk/senderterm/internal/models"
)

// Selection tracks the chosen sender address and projects it onto the shipment
// form. It writes only the four shipper fields.
type Selection struct {
	selected models.Identity
	form     FormWriter
}

func NewSelection(form FormWriter) *Selection {
	return &Selection{form: form}
}

func (s *Selection) Selected() models.Identity {
	return s.selected
}

// Toggle selects record, or clears the selection if record is already selected.
// Records absent from canonical are ignored. It reports whether anything changed.
func (s *Selection) Toggle(record models.AddressRecord, canonical []models.AddressRecord) bool {
	current := models.FindByID(canonical, record.ID)
	if current == nil {
		return false
	}

	if s.selected == current.ID {
		s.clear()
		return true
	}

	s.selected = current.ID
	s.project(current.DisplayName, current.Phone, current.City, current.StreetAddress)
	return true
}

// Reconcile clears a selection whose record is no longer in canonical. It reports
// whether the selection was cleared.
func (s *Selection) Reconcile(canonical []models.AddressRecord) bool {
	if s.selected.IsZero() {
		return false
	}
	if models.FindByID(canonical, s.selected) != nil {
		return false
	}
	s.clear()
	return true
}

func (s *Selection) clear() {
	s.selected = models.Identity{}
	s.project("", "", "", "")
}

func (s *Selection) project(name, mobile, city, address string) {
	if s.form == nil {
		return
	}
	s.form.SetField(models.FieldShipperFullName, name)
	s.form.SetField(models.FieldShipperMobile, mobile)
	s.form.SetField(models.FieldShipperCity, city)
	s.form.SetField(models.FieldShipperAddress, address)
}
