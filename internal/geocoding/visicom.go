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
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// VisicomBaseURL -- Visicom API base URL. The language segment and endpoint are appended per request.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0"

// VisicomCountryCode is the only country Visicom covers.
const VisicomCountryCode = "ua"

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client   HTTPClient    // HTTP client for making requests
	baseURL  string        // Base URL for the Visicom API
	apiKey   string        // API key with geocoding access
	language string        // Language segment of the endpoint (uk, en, ru)
	log      *slog.Logger  // Logger for logging operations
	limiter  *rate.Limiter // Rate limiter
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = fmt.Errorf("visicom API returned empty response: %w", ErrNoResult)
	ErrVisicomEmptyAddress  = errors.New("visicom provider got empty address")
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnathorized   = errors.New("visicom API unathorized (invalid API key)")
)

// Visicom API response (simplified for geocoding use-case).
type visicomResponse struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(apiKey string, rateLimit int, lang language.Tag, log *slog.Logger) *VisicomProvider {
	const timeout = 10

	return NewVisicomProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		lang,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey string,
	lang language.Tag,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	return &VisicomProvider{
		client:   client,
		baseURL:  VisicomBaseURL,
		apiKey:   apiKey,
		language: visicomLanguage(lang),
		log:      log,
		limiter:  limiter,
	}
}

// visicomLanguage maps a language preference onto the path segments Visicom serves.
func visicomLanguage(lang language.Tag) string {
	base, _ := lang.Base()
	switch base.String() {
	case "en", "ru":
		return base.String()
	default:
		return "uk"
	}
}

// Geocode converts a query into geographic coordinates using Visicom API.
func (vp *VisicomProvider) Geocode(
	ctx context.Context,
	query string,
) (*models.Coordinates, error) {
	const coordsListLength = 2

	// Rate limit
	if err := vp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	vp.log.DebugContext(ctx, "Geocoding using Visicom", "query", query)

	if query == "" {
		return nil, ErrVisicomEmptyAddress
	}

	reqURL, err := url.Parse(vp.baseURL + "/" + vp.language + "/geocode.json")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("text", query)
	params.Set("limit", "1")
	params.Set("key", vp.apiKey)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Headers
	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrVisicomUnathorized
	default:
		body, _ := io.ReadAll(resp.Body)
		vp.log.ErrorContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("visicom API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result visicomResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode visicom response: %w", err)
	}

	coords := result.Geometry.Coordinates
	if len(coords) == 0 {
		return nil, ErrVisicomEmptyResponse
	}

	if len(coords) != coordsListLength {
		return nil, ErrVisicomInvalidCoords
	}

	found := &models.Coordinates{Latitude: coords[1], Longitude: coords[0]}
	if !found.Valid() {
		return nil, ErrVisicomInvalidCoords
	}

	vp.log.DebugContext(ctx, "Visicom found result", "query", query, "lat", found.Latitude, "lon", found.Longitude)

	return found, nil
}
