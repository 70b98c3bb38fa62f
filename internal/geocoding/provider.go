package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// ErrNoResult is wrapped by every provider error that means "the provider answered,
// but found nothing". Other errors are transport, status or payload failures.
var ErrNoResult = errors.New("geocoding provider returned no result")

// Provider is an interface that defines a method for geocoding a free-text query.
// Geocode performs exactly one outbound lookup and returns the coordinates of the
// first result, or an error if there is none.
type Provider interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
