package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/handlers"
)

// RouteHandler is a function type for HTTP handlers
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]RouteHandler

// RouteByMethod dispatches on r.Method; unmatched methods get 405 with an Allow header
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	if handler, ok := routes[r.Method]; ok && handler != nil {
		handler(w, r)
		return
	}

	allowed := make([]string, 0, len(routes))
	for method, handler := range routes {
		if handler != nil {
			allowed = append(allowed, method)
		}
	}
	sort.Strings(allowed)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// RouteResourceCollection handles the list + create pattern
// GET -> list, POST -> create
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	RouteByMethod(w, r, MethodRouter{http.MethodGet: list, http.MethodPost: create})
}

// RouteResourceItem handles the get + update + delete pattern.
// nil handlers are treated as unsupported.
// GET -> get, PUT -> update, DELETE -> delete
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, delete RouteHandler) {
	RouteByMethod(w, r, MethodRouter{http.MethodGet: get, http.MethodPut: update, http.MethodDelete: delete})
}
