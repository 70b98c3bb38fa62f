package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	FetchShipmentsForGeocoding(ctx context.Context, limit int) ([]models.Shipment, error)
	UpdateShipmentCoordinates(ctx context.Context, shipmentID int64, leg models.Leg, coords models.Coordinates) error
	IncrementFailureCount(ctx context.Context, shipmentID int64, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
