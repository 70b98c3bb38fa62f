package resolver

import (
	"github.com/UnknownOlympus/waypoint/internal/address"
	"github.com/UnknownOlympus/waypoint/internal/models"
)

// Plan lists the lookups the cascade will try for addr, most specific first.
// countryName is appended to the structured queries; the full-address query is the
// normalized address as-is. An address without any field yields an empty plan.
func Plan(addr models.PostalAddress, countryName string) []models.Attempt {
	display, components := address.Normalize(addr)
	if display == "" {
		return nil
	}

	const maxAttempts = 4
	attempts := make([]models.Attempt, 0, maxAttempts)

	if components.Pincode != "" {
		attempts = append(attempts, models.Attempt{
			Strategy: models.StrategyPincode,
			Query:    address.Join(components.Pincode, countryName),
		})
	}

	if components.City != "" && components.State != "" {
		if components.Pincode != "" {
			attempts = append(attempts, models.Attempt{
				Strategy: models.StrategyCityStatePincode,
				Query:    address.Join(components.City, components.State, components.Pincode, countryName),
			})
		}

		attempts = append(attempts, models.Attempt{
			Strategy: models.StrategyCityState,
			Query:    address.Join(components.City, components.State, countryName),
		})
	}

	return append(attempts, models.Attempt{
		Strategy: models.StrategyFullAddress,
		Query:    display,
	})
}
