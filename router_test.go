package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestRouterRoutes(t *testing.T) {
	r := newRouter(routerHandlers{})

	cases := []struct {
		method  string
		path    string
		matches bool
	}{
		{http.MethodPut, "/api/bulk-operations/status", true},
		{http.MethodPut, "/api/bulk-operations/priority", true},
		{http.MethodPut, "/api/bulk-operations/assign", true},
		{http.MethodDelete, "/api/bulk-operations/delete", true},
		{http.MethodPut, "/api/bulk-operations/due-date", true},
		{http.MethodPost, "/api/bulk-operations/assign", false},
		{http.MethodPost, "/api/bulk-operations/delete", false},
		{http.MethodPost, "/api/bulk-operations/status", false},
		{http.MethodGet, "/api/search/tasks", true},
		{http.MethodGet, "/api/search/filter-options", true},
		{http.MethodGet, "/api/search/users", true},
		{http.MethodGet, "/api/search/quick-filters", true},
		{http.MethodGet, "/api/tasks/dashboard-data", true},
		{http.MethodGet, "/api/tasks/user-dashboard-data", true},
		{http.MethodPut, "/api/tasks/64b0c0c0c0c0c0c0c0c0c0c0/todo", true},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		var match mux.RouteMatch
		assert.Equal(t, tc.matches, r.Match(req, &match), "%s %s", tc.method, tc.path)
	}
}
