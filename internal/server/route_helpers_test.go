package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteResourceItemSkipsNilHandlers(t *testing.T) {
	var called string
	get := func(w http.ResponseWriter, r *http.Request) { called = "get" }

	rec := httptest.NewRecorder()
	RouteResourceItem(rec, httptest.NewRequest("GET", "/x", nil), get, nil, nil)
	assert.Equal(t, "get", called)

	rec = httptest.NewRecorder()
	RouteResourceItem(rec, httptest.NewRequest("DELETE", "/x", nil), get, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestRouteResourceCollectionAllowHeader(t *testing.T) {
	noop := func(w http.ResponseWriter, r *http.Request) {}

	rec := httptest.NewRecorder()
	RouteResourceCollection(rec, httptest.NewRequest("PATCH", "/x", nil), noop, noop)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}
