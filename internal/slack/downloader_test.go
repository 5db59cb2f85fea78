package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDownloader_Fetch(t *testing.T) {
	t.Run("sends bearer token and returns bytes with content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("pdf bytes"))
		}))
		defer srv.Close()

		d := NewDownloader("xoxb-test", 5*time.Second, zap.NewNop())
		content, contentType, err := d.Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []byte("pdf bytes"), content)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		d := NewDownloader("xoxb-test", 5*time.Second, zap.NewNop())
		_, _, err := d.Fetch(context.Background(), srv.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		d := NewDownloader("xoxb-test", time.Second, zap.NewNop())
		_, _, err := d.Fetch(context.Background(), "http://127.0.0.1:1/nope")
		assert.Error(t, err)
	})

	t.Run("cancelled context aborts the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		d := NewDownloader("xoxb-test", 5*time.Second, zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := d.Fetch(ctx, srv.URL)
		assert.Error(t, err)
	})
}
