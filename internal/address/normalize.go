// Package address turns postal address records into geocoding-ready strings and components.
package address

import (
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// Separator joins address parts in the display string.
const Separator = ", "

// Display concatenates the present fields of addr in the order
// line1, line2, city, state, pincode, country. Blank fields are skipped,
// so a fully empty address yields an empty string.
func Display(addr models.PostalAddress) string {
	return Join(addr.Line1, addr.Line2, addr.City, addr.State, addr.Pincode, addr.Country)
}

// ComponentsOf returns the pincode, city, state and country of addr, trimmed.
func ComponentsOf(addr models.PostalAddress) models.Components {
	return models.Components{
		Pincode: strings.TrimSpace(addr.Pincode),
		City:    strings.TrimSpace(addr.City),
		State:   strings.TrimSpace(addr.State),
		Country: strings.TrimSpace(addr.Country),
	}
}

// Normalize returns both the display string and the component record of addr.
func Normalize(addr models.PostalAddress) (string, models.Components) {
	return Display(addr), ComponentsOf(addr)
}

// Join trims parts and joins the non-empty ones with Separator.
func Join(parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			present = append(present, part)
		}
	}

	return strings.Join(present, Separator)
}
