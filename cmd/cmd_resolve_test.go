package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nominatimStub(t *testing.T, answers map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		body, ok := answers[r.URL.Query().Get("q")]
		if !ok {
			body = `[]`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func runResolve(t *testing.T, baseURL string, args ...string) (resolveOutput, error) {
	t.Helper()
	t.Setenv("WAYPOINT_ENV", "production")
	t.Setenv("WAYPOINT_PROVIDER_TYPE", "nominatim")
	t.Setenv("WAYPOINT_PROVIDER_BASE_URL", baseURL)
	t.Setenv("WAYPOINT_PROVIDER_RATE_LIMIT", "0")
	t.Setenv("WAYPOINT_RESOLVER_DELAY", "0s")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"resolve"}, args...))

	err := root.Execute()

	var out resolveOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))

	return out, err
}

func TestResolveCommand(t *testing.T) {
	t.Run("falls back to city and state", func(t *testing.T) {
		srv := nominatimStub(t, map[string]string{
			"Pune, Maharashtra, India": `[{"lat":"18.5196","lon":"73.8553"}]`,
		})

		out, err := runResolve(t, srv.URL, "--line1", "12 Park St", "--city", "Pune", "--state", "Maharashtra")

		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Equal(t, "12 Park St, Pune, Maharashtra", out.Address)
		assert.Equal(t, "city+state", string(out.Strategy))
		assert.Equal(t, 1, out.Attempts)
		require.NotNil(t, out.Location)
		assert.InDelta(t, 18.5196, out.Location.Latitude, 1e-9)
	})

	t.Run("not located exits with error", func(t *testing.T) {
		srv := nominatimStub(t, nil)

		out, err := runResolve(t, srv.URL, "--city", "Atlantis", "--pincode", "000000")

		require.ErrorIs(t, err, errNotLocated)
		assert.False(t, out.Found)
		assert.Nil(t, out.Location)
		assert.Equal(t, 2, out.Attempts)
	})
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{envLocal, envDev, envProd, "unknown"} {
		t.Run(env, func(t *testing.T) {
			var buf bytes.Buffer
			logger := setupLogger(env, &buf)

			require.NotNil(t, logger)
			logger.Error("probe")
			assert.Contains(t, buf.String(), "probe")
		})
	}
}
