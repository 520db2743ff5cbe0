package models

const (
	FieldShipperFullName = "shipper_full_name"
	FieldShipperMobile   = "shipper_mobile"
	FieldShipperCity     = "shipper_city"
	FieldShipperAddress  = "shipper_address"
)

// ShipperFields lists the form fields a chosen sender address fills in.
var ShipperFields = []string{
	FieldShipperFullName,
	FieldShipperMobile,
	FieldShipperCity,
	FieldShipperAddress,
}

// ShipmentForm holds the values of the shipment being created.
type ShipmentForm struct {
	values map[string]string
}

func NewShipmentForm() *ShipmentForm {
	return &ShipmentForm{values: make(map[string]string)}
}

func (f *ShipmentForm) SetField(name, value string) {
	f.values[name] = value
}

func (f *ShipmentForm) Field(name string) string {
	return f.values[name]
}

// Shipper returns the four sender fields in display order.
func (f *ShipmentForm) Shipper() [4]string {
	var out [4]string
	for i, name := range ShipperFields {
		out[i] = f.values[name]
	}
	return out
}

// HasShipper reports whether any sender field is filled.
func (f *ShipmentForm) HasShipper() bool {
	for _, name := range ShipperFields {
		if f.values[name] != "" {
			return true
		}
	}
	return false
}
