package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	h := newHTTPHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestOpenAPISpecServed(t *testing.T) {
	h := newHTTPHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi:")
}

// The auth and standalone-receipt endpoints exist in the route table but are
// not implemented; they must answer 501, not 404.
func TestStubEndpoints(t *testing.T) {
	h := newHTTPHandler(nil, nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/register"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/receipts/upload"},
		{http.MethodPut, "/api/receipts/abc123/items"},
		{http.MethodGet, "/api/receipts/abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusNotImplemented, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "Not implemented yet", body["message"])
		})
	}
}
