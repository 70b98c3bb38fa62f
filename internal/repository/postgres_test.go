package repository_test

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shipmentColumns = []string{
	"shipment_id",
	"origin_line1", "origin_line2", "origin_city", "origin_state", "origin_pincode", "origin_country",
	"origin_done",
	"destination_line1", "destination_line2", "destination_city", "destination_state", "destination_pincode",
	"destination_country", "destination_done",
}

var fetchShipmentsQuery = regexp.QuoteMeta(`
		FROM public.shipments
		WHERE
			(origin_latitude IS NULL OR destination_latitude IS NULL)
			AND geocoding_attempts < 5
		ORDER BY created_at ASC
		LIMIT $1;
`)

func TestFetchShipmentsForGeocoding(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	limit := 10

	t.Run("error - query shipments", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(fetchShipmentsQuery).
			WithArgs(limit).
			WillReturnError(assert.AnError)

		shipments, err := repo.FetchShipmentsForGeocoding(ctx, limit)

		require.Nil(t, shipments)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to query shipments without coordinates")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan shipments", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(fetchShipmentsQuery).
			WithArgs(limit).
			WillReturnRows(
				pgxmock.NewRows(shipmentColumns).AddRow(
					"invalid_id", "", "", "", "", "", "", false, "", "", "", "", "", "", false,
				),
			)

		shipments, err := repo.FetchShipmentsForGeocoding(ctx, limit)

		require.Nil(t, shipments)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to scan shipment")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(fetchShipmentsQuery).
			WithArgs(limit).
			WillReturnRows(
				pgxmock.NewRows(shipmentColumns).AddRow(
					int64(7), "12 Park St", "", "Pune", "Maharashtra", "411001", "", false,
					"", "", "Mumbai", "Maharashtra", "400001", "", false,
				).RowError(1, assert.AnError),
			)

		shipments, err := repo.FetchShipmentsForGeocoding(ctx, limit)

		require.Nil(t, shipments)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to read row")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - fetch shipments", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(fetchShipmentsQuery).
			WithArgs(limit).
			WillReturnRows(
				pgxmock.NewRows(shipmentColumns).AddRow(
					int64(7), "12 Park St", "", "Pune", "Maharashtra", "411001", "", true,
					"", "", "Mumbai", "Maharashtra", "400001", "India", false,
				),
			)

		shipments, err := repo.FetchShipmentsForGeocoding(ctx, limit)

		require.NoError(t, err)
		require.Len(t, shipments, 1)
		assert.Equal(t, models.Shipment{
			ID: 7,
			Origin: models.PostalAddress{
				Line1: "12 Park St", City: "Pune", State: "Maharashtra", Pincode: "411001",
			},
			Destination: models.PostalAddress{
				City: "Mumbai", State: "Maharashtra", Pincode: "400001", Country: "India",
			},
			OriginDone: true,
		}, shipments[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateShipmentCoordinates(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	shipmentID := int64(123)
	coords := models.Coordinates{
		Latitude:  18.5196,
		Longitude: 73.8553,
	}

	t.Run("error - update origin coords", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta("SET origin_latitude = $1, origin_longitude = $2")).
			WithArgs(coords.Latitude, coords.Longitude, shipmentID).
			WillReturnError(assert.AnError)

		err = repo.UpdateShipmentCoordinates(ctx, shipmentID, models.LegOrigin, coords)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to update shipment coordinates")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - update destination coords", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta("SET destination_latitude = $1, destination_longitude = $2")).
			WithArgs(coords.Latitude, coords.Longitude, shipmentID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateShipmentCoordinates(ctx, shipmentID, models.LegDestination, coords)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - unknown leg", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		err = repo.UpdateShipmentCoordinates(ctx, shipmentID, models.Leg("stopover"), coords)

		require.ErrorIs(t, err, repository.ErrUnknownLeg)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIncrementFailureCount(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	shipmentID := int64(123)
	query := `
		UPDATE shipments
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE shipment_id = $2;
	`

	t.Run("error - increment failure count", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("error", shipmentID).
			WillReturnError(assert.AnError)

		err = repo.IncrementFailureCount(ctx, shipmentID, "error")

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to update geocoding error and number of attempts")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - increment failure count", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("error", shipmentID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.IncrementFailureCount(ctx, shipmentID, "error")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGeocodeCache(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	lookupQuery := regexp.QuoteMeta("SELECT latitude, longitude FROM geocode_cache")
	storeQuery := regexp.QuoteMeta("INSERT INTO geocode_cache")
	coords := models.Coordinates{Latitude: 18.5196, Longitude: 73.8553}

	t.Run("lookup hit", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(lookupQuery).WithArgs("nominatim", "411001, India").
			WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude"}).AddRow(18.5196, 73.8553))

		got, err := repo.Lookup(ctx, "nominatim", "411001, India")

		require.NoError(t, err)
		assert.Equal(t, &coords, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lookup miss", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(lookupQuery).WithArgs("nominatim", "nowhere").WillReturnError(pgx.ErrNoRows)

		got, err := repo.Lookup(ctx, "nominatim", "nowhere")

		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lookup error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(lookupQuery).WithArgs("nominatim", "411001, India").WillReturnError(assert.AnError)

		got, err := repo.Lookup(ctx, "nominatim", "411001, India")

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to query geocode cache")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(storeQuery).WithArgs("nominatim", "411001, India", coords.Latitude, coords.Longitude).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Store(ctx, "nominatim", "411001, India", coords))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(storeQuery).WithArgs("nominatim", "411001, India", coords.Latitude, coords.Longitude).
			WillReturnError(assert.AnError)

		err = repo.Store(ctx, "nominatim", "411001, India", coords)

		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewRepository(mock, slog.Default())

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS shipments")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, repo.EnsureSchema(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
