package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbso/internal/platform/config"
	dErrors "cbso/pkg/domain-errors"
	"cbso/pkg/platform/sentinel"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.CBSOConfig{BaseURL: srv.URL, SubscriptionKey: "test-key"}, srv.Client())
}

func TestClientHeaders(t *testing.T) {
	var gotKey, gotAccept, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("NBB-CBSO-Subscription-Key")
		gotAccept = r.Header.Get("Accept")
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.Equal(t, "/authentic/legalEntity/0400638803/references", r.URL.Path)
		w.Write([]byte(`[]`))
	})

	payload, err := client.References(context.Background(), "0400638803")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), payload)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotAccept)
	assert.NotEmpty(t, gotRequestID)
}

func TestClientAccountingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authentic/deposit/2023-001/accountingData", r.URL.Path)
		assert.Equal(t, "application/x.jsonxbrl", r.Header.Get("Accept"))
		w.Write([]byte(`{}`))
	})

	_, err := client.AccountingData(context.Background(), "2023-001")
	require.NoError(t, err)
}

func TestClientErrorMapping(t *testing.T) {
	t.Run("404 maps to not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := client.References(context.Background(), "0400638803")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("5xx maps to unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.References(context.Background(), "0400638803")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Get(ctx, "refs:0400638803")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, cache.Set(ctx, "refs:0400638803", []byte(`[]`)))

	payload, err := cache.Get(ctx, "refs:0400638803")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), payload)
}

func TestLoaderReadsThroughCache(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"ReferenceNumber":"2023-001"}]`))
	})
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	loader := NewLoader(client, cache)
	ctx := context.Background()

	first, err := loader.References(ctx, "0400638803")
	require.NoError(t, err)
	second, err := loader.References(ctx, "0400638803")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "second read must come from the cache")
}
