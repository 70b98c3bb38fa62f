package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/internal/resolver"
)

// ErrMsgUnresolved prefixes the geocoding error stored for a shipment whose legs could not be located.
const ErrMsgUnresolved = "address could not be located"

// batchLimit is the maximum number of shipments fetched per poll.
const batchLimit = 100

// GeocodingService polls the repository for shipments without coordinates and
// resolves their addresses with a pool of workers.
type GeocodingService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Interface for data repository access
	resolver     *resolver.Resolver   // Resolution cascade for shipment addresses
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Number of concurrent workers for processing
	pollInterval time.Duration        // Interval for polling new shipments
}

// NewGeocodingService creates a new instance of GeocodingService.
func NewGeocodingService(
	log *slog.Logger,
	repo repository.Interface,
	resolver *resolver.Resolver,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *GeocodingService {
	return &GeocodingService{
		log:          log,
		repo:         repo,
		resolver:     resolver,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run starts the geocoding service, which periodically polls for new shipments to geocode.
// It listens for a cancellation signal from the context to gracefully stop the service.
func (gs *GeocodingService) Run(ctx context.Context) {
	ticker := time.NewTicker(gs.pollInterval)
	defer ticker.Stop()

	gs.log.InfoContext(ctx, "Geocoding service started...")

	for {
		select {
		case <-ctx.Done():
			gs.log.InfoContext(ctx, "Geocoding service stopped.")
			return
		case <-ticker.C:
			gs.log.InfoContext(ctx, "Polling for new shipments to geocode...")
			gs.processBatch(ctx)
		}
	}
}

// processBatch fetches shipments from the repository, starts a worker pool to process them,
// and waits for all workers to finish.
func (gs *GeocodingService) processBatch(ctx context.Context) {
	shipments, err := gs.repo.FetchShipmentsForGeocoding(ctx, batchLimit)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to fetch shipments", "error", err)
		return
	}
	if len(shipments) == 0 {
		gs.log.InfoContext(ctx, "No shipments to process.")
		return
	}

	gs.log.InfoContext(
		ctx,
		"Found shipments to process. Starting worker pool.",
		"jobs", len(shipments),
		"num_workers", gs.numWorkers,
	)

	jobs := make(chan models.Shipment, len(shipments))
	var wgr sync.WaitGroup

	for i := 1; i <= gs.numWorkers; i++ {
		wgr.Add(1)
		go gs.worker(ctx, i, &wgr, jobs)
	}

	for _, shp := range shipments {
		jobs <- shp
	}
	close(jobs)

	wgr.Wait()
	gs.log.InfoContext(ctx, "Processing batch finished")
}

// worker processes shipments from the jobs channel until it is closed.
func (gs *GeocodingService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Shipment) {
	defer wg.Done()
	for shp := range jobs {
		gs.metrics.ActiveWorkers.Inc()
		gs.log.DebugContext(ctx, "Processing shipment", "worker", idx, "shipment", shp.ID)

		gs.processShipment(ctx, idx, shp)

		gs.metrics.ActiveWorkers.Dec()
	}
}

// processShipment resolves the legs of a shipment that still lack coordinates, stores the
// coordinates found and records a failure when any leg stays unresolved.
func (gs *GeocodingService) processShipment(ctx context.Context, idx int, shp models.Shipment) {
	results := gs.resolvePending(ctx, shp)

	var failed []string
	for _, leg := range []models.Leg{models.LegOrigin, models.LegDestination} {
		res, pending := results[leg]
		if !pending {
			continue
		}
		if !res.Found {
			failed = append(failed, string(leg))
			continue
		}

		if err := gs.repo.UpdateShipmentCoordinates(ctx, shp.ID, leg, res.Coordinates); err != nil {
			gs.log.ErrorContext(
				ctx,
				"Failed to update coordinates for shipment",
				"worker", idx,
				"shipment", shp.ID,
				"leg", leg,
				"error", err,
			)
		}
	}

	if len(failed) == 0 {
		gs.metrics.ShipmentsProcessed.WithLabelValues("success").Inc()
		gs.log.DebugContext(ctx, "Worker successfully processed the shipment", "worker", idx, "shipment", shp.ID)
		return
	}

	gs.metrics.ShipmentsProcessed.WithLabelValues("failure").Inc()
	errMsg := ErrMsgUnresolved + ": " + strings.Join(failed, ",")
	gs.log.WarnContext(ctx, "Failed to geocode shipment", "worker", idx, "shipment", shp.ID, "legs", failed)

	if err := gs.repo.IncrementFailureCount(ctx, shp.ID, errMsg); err != nil {
		gs.log.ErrorContext(
			ctx,
			"Could not update failure count for shipment",
			"worker", idx,
			"shipment", shp.ID,
			"error", err,
		)
	}
}

// resolvePending returns the resolutions of the legs that were still missing coordinates.
// Both legs go through ResolveRoute so they are looked up concurrently.
func (gs *GeocodingService) resolvePending(ctx context.Context, shp models.Shipment) map[models.Leg]models.Resolution {
	results := make(map[models.Leg]models.Resolution, 2)

	switch {
	case !shp.OriginDone && !shp.DestinationDone:
		route := gs.resolver.ResolveRoute(ctx, shp.Origin, shp.Destination)
		results[models.LegOrigin] = route.Origin
		results[models.LegDestination] = route.Destination
	case !shp.OriginDone:
		results[models.LegOrigin] = gs.resolver.Resolve(ctx, shp.Origin)
	case !shp.DestinationDone:
		results[models.LegDestination] = gs.resolver.Resolve(ctx, shp.Destination)
	}

	return results
}
