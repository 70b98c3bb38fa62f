package models

// Leg identifies one end of a shipment route.
type Leg string

const (
	LegOrigin      Leg = "origin"
	LegDestination Leg = "destination"
)

// Shipment is a shipment whose route endpoints still need coordinates.
type Shipment struct {
	ID              int64         // ID is the unique identifier of the shipment.
	Origin          PostalAddress // Origin is the pickup address.
	Destination     PostalAddress // Destination is the delivery address.
	OriginDone      bool          // OriginDone is true when the origin already has coordinates.
	DestinationDone bool          // DestinationDone is true when the destination already has coordinates.
}
