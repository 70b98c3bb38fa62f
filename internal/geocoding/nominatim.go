package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const (
	// NominatimBaseURL is the public OpenStreetMap search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies the service to geocoding providers.
	// Nominatim's usage policy requires it to carry contact information:
	// https://operations.osmfoundation.org/policies/nominatim/
	DefaultUserAgent = "Waypoint-Route-Resolver/1.0 (https://github.com/UnknownOlympus/waypoint)"
	// DefaultCountryCode restricts lookups to India unless configured otherwise.
	DefaultCountryCode = "in"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client      HTTPClient    // HTTP client for making requests
	baseURL     string        // Base URL for the Nominatim API
	log         *slog.Logger  // Logger for logging operations
	userAgent   string        // userAgent is required by Nominatim usage policy
	countryCode string        // ISO 3166-1 alpha-2 code results are restricted to
	language    language.Tag  // Preferred language of the results
	limiter     *rate.Limiter // Optional limiter shared by all callers of this provider
}

// NominatimOptions configures a NominatimProvider. Zero values fall back to defaults.
type NominatimOptions struct {
	BaseURL     string
	UserAgent   string
	CountryCode string
	Language    language.Tag
	// RateLimit is the number of requests per second; zero disables limiting.
	RateLimit int
}

// nominatimResponse represents one element of the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"` // Latitude as string
	Lon         string `json:"lon"` // Longitude as string
	DisplayName string `json:"display_name"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = fmt.Errorf("nominatim API returned empty response: %w", ErrNoResult)
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a new Nominatim geocoding provider with a default HTTP client.
func NewNominatimProvider(opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, opts, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	provider := &NominatimProvider{
		client:      client,
		baseURL:     opts.BaseURL,
		log:         log,
		userAgent:   opts.UserAgent,
		countryCode: opts.CountryCode,
		language:    opts.Language,
	}

	if provider.baseURL == "" {
		provider.baseURL = NominatimBaseURL
	}
	if provider.userAgent == "" {
		provider.userAgent = DefaultUserAgent
	}
	if provider.countryCode == "" {
		provider.countryCode = DefaultCountryCode
	}
	if provider.language == language.Und {
		provider.language = language.English
	}
	if opts.RateLimit > 0 {
		provider.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return provider
}

// Geocode performs a single Nominatim search for query, restricted to the configured country,
// and returns the coordinates of the top result.
func (np *NominatimProvider) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	if np.limiter != nil {
		if err := np.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "query", query)

	// Build request URL with query parameters
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")          // Only need the top result
	params.Set("addressdetails", "1") // Include detailed address breakdown for better matching
	params.Set("countrycodes", np.countryCode)
	params.Set("accept-language", np.language.String())
	reqURL.RawQuery = params.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", np.language.String())

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	np.log.DebugContext(ctx, "Nominatim found result",
		"lat", results[0].Lat, "lon", results[0].Lon, "display_name", results[0].DisplayName)

	lat, err := parseCoordinate(results[0].Lat)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := parseCoordinate(results[0].Lon)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// parseCoordinate parses a decimal degree string, rejecting NaN and infinities.
func parseCoordinate(raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if !(models.Coordinates{Latitude: value}).Valid() {
		return 0, strconv.ErrRange
	}

	return value, nil
}
