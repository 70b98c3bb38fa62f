package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/text/language"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. Lookups are restricted to one country.
type GoogleProvider struct {
	client      GoogleAPIClient // client is the Google Maps API client
	log         *slog.Logger    // log is the logger for logging operations
	countryCode string          // countryCode restricts results via the country component filter
	language    language.Tag    // language of the returned results
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Common errors for Google provider.
var (
	// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
	ErrEmptyResponse = fmt.Errorf("get empty response from Google Maps API: %w", ErrNoResult)
	// ErrGoogleInvalidCoords is returned when the top result carries non-finite coordinates.
	ErrGoogleInvalidCoords = errors.New("google maps API returned invalid coordinates")
)

// NewGoogleProvider initializes a new GoogleProvider with the given client, country code and language.
func NewGoogleProvider(client GoogleAPIClient, countryCode string, lang language.Tag, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{
		client:      client,
		log:         log,
		countryCode: strings.ToUpper(countryCode),
		language:    lang,
	}
}

// Geocode resolves query with the Google Maps Geocoding API and returns the location of the first result.
func (gp *GoogleProvider) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query)

	geocodeResponse, err := gp.client.Geocode(ctx, gp.request(query))
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}

	location := geocodeResponse[0].Geometry.Location
	coords := &models.Coordinates{Latitude: location.Lat, Longitude: location.Lng}
	if !coords.Valid() {
		return nil, ErrGoogleInvalidCoords
	}

	return coords, nil
}

func (gp *GoogleProvider) request(query string) *maps.GeocodingRequest {
	req := &maps.GeocodingRequest{Address: query}
	if gp.countryCode != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: gp.countryCode}
		req.Region = strings.ToLower(gp.countryCode)
	}
	if gp.language != language.Und {
		req.Language = gp.language.String()
	}

	return req
}
