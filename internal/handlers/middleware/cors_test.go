package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORSMiddleware(t *testing.T) {
	called := 0
	h := CORSMiddleware([]string{"http://localhost:3001", "http://localhost:3002"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called++
			w.WriteHeader(http.StatusOK)
		}),
	)

	serve := func(method string, origin string, preflight bool) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, "/api/auth/login", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if preflight {
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	t.Run("allowed origin", func(t *testing.T) {
		called = 0

		rec := serve(http.MethodPost, "http://localhost:3002", false)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, called)
		require.Equal(t, "http://localhost:3002", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no cors headers", func(t *testing.T) {
		called = 0

		rec := serve(http.MethodPost, "http://evil.example", false)

		require.Equal(t, http.StatusOK, rec.Code, "request still served, browser blocks the response")
		require.Equal(t, 1, called)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answered", func(t *testing.T) {
		called = 0

		rec := serve(http.MethodOptions, "http://localhost:3001", true)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Zero(t, called, "preflight should not reach handler")
		require.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})

	t.Run("no origin", func(t *testing.T) {
		called = 0

		rec := serve(http.MethodGet, "", false)

		require.Equal(t, 1, called)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
