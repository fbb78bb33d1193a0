package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	t.Run("pins one instant for the whole request", func(t *testing.T) {
		var reads []time.Time
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reads = append(reads, requestcontext.Now(r.Context()))
			time.Sleep(5 * time.Millisecond)
			reads = append(reads, requestcontext.Now(r.Context()))
		}))

		before := time.Now()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/validate", nil))

		require.Len(t, reads, 2)
		assert.Equal(t, reads[0], reads[1], "issued-at and row timestamp must agree")
		assert.WithinDuration(t, before, reads[0], time.Second)
	})

	t.Run("each request gets its own instant", func(t *testing.T) {
		var seen []time.Time
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, requestcontext.Now(r.Context()))
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/logs", nil))
		time.Sleep(2 * time.Millisecond)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/logs", nil))

		require.Len(t, seen, 2)
		assert.True(t, seen[1].After(seen[0]))
	})

	t.Run("an instant set upstream is replaced", func(t *testing.T) {
		stale := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		var got time.Time
		handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = requestcontext.Now(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(requestcontext.WithTime(req.Context(), stale))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, stale, got)
	})
}
