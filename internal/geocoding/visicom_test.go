package geocoding_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

func TestVisicomProvider_Geocode(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	apiKey := "test-api-key"
	defaultRL := rate.NewLimiter(rate.Inf, 0)

	t.Run("successfull geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), geocoding.VisicomBaseURL+"/uk/geocode.json")
				assert.Equal(t, "м. Київ, вул. Хрещатик, 1", req.URL.Query().Get("text"))
				assert.Equal(t, apiKey, req.URL.Query().Get("key"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "application/json", req.Header.Get("Accept"))

				return jsonResponse(http.StatusOK, `{"geo_centroid":{"coordinates":[30.5234,50.4501]}}`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, defaultRL, logger)
		coords, err := provider.Geocode(ctx, "м. Київ, вул. Хрещатик, 1")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 50.4501, coords.Latitude, 0.0001)
		assert.InEpsilon(t, 30.5234, coords.Longitude, 0.0001)
	})

	t.Run("english endpoint", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Contains(t, req.URL.Path, "/en/geocode.json")
				return jsonResponse(http.StatusOK, `{"geo_centroid":{"coordinates":[30.5234,50.4501]}}`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.English, defaultRL, logger)
		_, err := provider.Geocode(ctx, "Kyiv")

		require.NoError(t, err)
	})

	t.Run("empty response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{}`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, defaultRL, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		assert.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrVisicomEmptyResponse)
		assert.ErrorIs(t, err, geocoding.ErrNoResult)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"geo_centroid":{"coordinates":[30.5]}}`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, defaultRL, logger)
		coords, err := provider.Geocode(ctx, "bad coords")

		require.Error(t, err)
		assert.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrVisicomInvalidCoords)
	})

	t.Run("Unathorized", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `unathorized`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, defaultRL, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		assert.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrVisicomUnathorized)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		rateCtx, cancel := context.WithCancel(context.Background())
		cancel() // cancel immediately
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called when rate limit blocks")
				return &http.Response{}, nil
			},
		}

		limiter := rate.NewLimiter(rate.Every(time.Second), 1)

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, limiter, logger)
		coords, err := provider.Geocode(rateCtx, "some address")

		require.Error(t, err)
		assert.Nil(t, coords)
		assert.ErrorContains(t, err, "rate limit exceeded")
	})

	t.Run("empty address", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{}`), nil
			},
		}

		provider := geocoding.NewVisicomProviderWithClient(mockClient, apiKey, language.Ukrainian, defaultRL, logger)
		coords, err := provider.Geocode(ctx, "")

		require.Error(t, err)
		assert.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrVisicomEmptyAddress)
	})
}
