package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cbso/pkg/domain-errors"
)

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyz(t *testing.T) {
	t.Run("ready when all checks pass", func(t *testing.T) {
		checks := map[string]HealthChecker{
			"postgres": HealthFunc(func(context.Context) error { return nil }),
		}
		srv := httptest.NewServer(New(checks).Router())
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unavailable when a check fails", func(t *testing.T) {
		checks := map[string]HealthChecker{
			"postgres": HealthFunc(func(context.Context) error {
				return dErrors.New(dErrors.CodeUnavailable, "connection refused")
			}),
		}
		srv := httptest.NewServer(New(checks).Router())
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(nil).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
