package models

// Strategy names one query-construction rule of the resolution cascade.
type Strategy string

// Strategies in the order the cascade tries them.
const (
	StrategyPincode          Strategy = "pincode"
	StrategyCityStatePincode Strategy = "city+state+pincode"
	StrategyCityState        Strategy = "city+state"
	StrategyFullAddress      Strategy = "full-address"
)

// Attempt pairs a strategy with the query string it produced for one address.
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Query    string   `json:"query"`
}

// Resolution is the outcome of resolving one address: either Found with coordinates,
// or not found. The reason a lookup failed is not carried.
type Resolution struct {
	Found       bool
	Coordinates Coordinates
	Strategy    Strategy // Strategy that produced the coordinates, empty when not found.
	Attempts    int      // Number of provider lookups issued.
}

// Resolved builds a successful resolution.
func Resolved(coords Coordinates, strategy Strategy, attempts int) Resolution {
	return Resolution{Found: true, Coordinates: coords, Strategy: strategy, Attempts: attempts}
}

// Unresolved builds a resolution for an address that could not be located.
func Unresolved(attempts int) Resolution {
	return Resolution{Attempts: attempts}
}
