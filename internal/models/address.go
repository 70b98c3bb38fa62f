package models

import "strings"

// PostalAddress is a shipping address as captured by the dashboard forms.
// Every field is optional, but at least one must be set for a lookup to be attempted.
type PostalAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether the address has no usable field.
func (a PostalAddress) IsEmpty() bool {
	for _, field := range []string{a.Line1, a.Line2, a.City, a.State, a.Pincode, a.Country} {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}

	return true
}

// Components is the structured subset of an address used to build geocoding queries.
// Absent fields are left empty.
type Components struct {
	Pincode string `json:"pincode,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}
