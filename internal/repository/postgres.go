package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrUnknownLeg is returned when a route leg other than origin or destination is requested.
var ErrUnknownLeg = errors.New("unknown route leg")

// FetchShipmentsForGeocoding retrieves shipments whose origin or destination still lacks coordinates.
// Shipments that failed 5 times are skipped. The results are ordered by creation date and limited
// to the specified count.
func (r *Repository) FetchShipmentsForGeocoding(ctx context.Context, limit int) ([]models.Shipment, error) {
	var shipments []models.Shipment
	query := `
		SELECT
			shipment_id,
			COALESCE(origin_line1, ''), COALESCE(origin_line2, ''), COALESCE(origin_city, ''),
			COALESCE(origin_state, ''), COALESCE(origin_pincode, ''), COALESCE(origin_country, ''),
			origin_latitude IS NOT NULL,
			COALESCE(destination_line1, ''), COALESCE(destination_line2, ''), COALESCE(destination_city, ''),
			COALESCE(destination_state, ''), COALESCE(destination_pincode, ''), COALESCE(destination_country, ''),
			destination_latitude IS NOT NULL
		FROM public.shipments
		WHERE
			(origin_latitude IS NULL OR destination_latitude IS NULL)
			AND geocoding_attempts < 5
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments without coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var shp models.Shipment
		errScan := rows.Scan(
			&shp.ID,
			&shp.Origin.Line1, &shp.Origin.Line2, &shp.Origin.City,
			&shp.Origin.State, &shp.Origin.Pincode, &shp.Origin.Country,
			&shp.OriginDone,
			&shp.Destination.Line1, &shp.Destination.Line2, &shp.Destination.City,
			&shp.Destination.State, &shp.Destination.Pincode, &shp.Destination.Country,
			&shp.DestinationDone,
		)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan shipment without coordinates: %w", errScan)
		}
		r.log.DebugContext(ctx, "A new shipment without coordinates has been received.", "ID", shp.ID)
		shipments = append(shipments, shp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return shipments, nil
}

// UpdateShipmentCoordinates stores the coordinates of one leg of a shipment and clears the geocoding error.
func (r *Repository) UpdateShipmentCoordinates(
	ctx context.Context,
	shipmentID int64,
	leg models.Leg,
	coords models.Coordinates,
) error {
	var query string
	switch leg {
	case models.LegOrigin:
		query = `
		UPDATE shipments
		SET
			origin_latitude = $1,
			origin_longitude = $2,
			geocoding_error = NULL
		WHERE
			shipment_id = $3;
	`
	case models.LegDestination:
		query = `
		UPDATE shipments
		SET
			destination_latitude = $1,
			destination_longitude = $2,
			geocoding_error = NULL
		WHERE
			shipment_id = $3;
	`
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLeg, leg)
	}

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, shipmentID)
	if err != nil {
		return fmt.Errorf("failed to update shipment coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the geocoding attempt count for a specific shipment
// and updates the associated error message.
func (r *Repository) IncrementFailureCount(ctx context.Context, shipmentID int64, errMsg string) error {
	query := `
		UPDATE shipments
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE shipment_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, shipmentID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}

// Lookup returns cached coordinates for a provider query, or nil if the query was never resolved.
func (r *Repository) Lookup(ctx context.Context, provider, query string) (*models.Coordinates, error) {
	sqlQuery := `
		SELECT latitude, longitude
		FROM geocode_cache
		WHERE provider = $1 AND query = $2;
	`

	var coords models.Coordinates
	err := r.db.QueryRow(ctx, sqlQuery, provider, query).Scan(&coords.Latitude, &coords.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // a miss is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query geocode cache: %w", err)
	}

	return &coords, nil
}

// Store upserts the coordinates of a provider query into the cache.
func (r *Repository) Store(ctx context.Context, provider, query string, coords models.Coordinates) error {
	sqlQuery := `
		INSERT INTO geocode_cache (provider, query, latitude, longitude, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (provider, query) DO UPDATE
		SET latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now();
	`

	if _, err := r.db.Exec(ctx, sqlQuery, provider, query, coords.Latitude, coords.Longitude); err != nil {
		return fmt.Errorf("failed to store geocode cache entry: %w", err)
	}

	return nil
}
