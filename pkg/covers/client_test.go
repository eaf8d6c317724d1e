package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGoogleClient(config.NewForTest())
	client.BaseURL = server.URL
	return client
}

func TestGoogleClient_FetchCover(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the image bytes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "abc123", r.URL.Query().Get("id"))
			assert.Equal(t, "frontcover", r.URL.Query().Get("printsec"))
			w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
		})

		data, err := client.FetchCover(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, data)
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte{1})
		})

		_, err := client.FetchCover(ctx, "abc123")
		require.NoError(t, err)
	})

	t.Run("errors on non-200", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.FetchCover(ctx, "missing")
		assert.ErrorContains(t, err, "HTTP 404")
	})

	t.Run("errors on empty body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := client.FetchCover(ctx, "empty")
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("errors without an id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte{1})
		})

		_, err := client.FetchCover(ctx, "")
		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.FetchCover(cancelled, "abc123")
		assert.Error(t, err)
	})
}
