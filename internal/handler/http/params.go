package http

import (
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

// pathID returns the {id} URL parameter. Ids are UUIDs in storage, anything
// else cannot name a row and is reported as notFound.
func pathID(r *http.Request, notFound error) (string, error) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		return "", notFound
	}
	return id, nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam returns nil when the parameter is absent.
func getBoolQueryParam(r *http.Request, key string) *bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	b := val == "true" || val == "1"
	return &b
}

// paginationFromQuery reads page, limit, sort_by and sort_order. Services
// normalize the values against their own whitelist.
func paginationFromQuery(r *http.Request) pagination.Params {
	q := r.URL.Query()
	return pagination.Params{
		Page:      getIntQueryParam(r, "page", pagination.DefaultPage),
		Limit:     getIntQueryParam(r, "limit", pagination.DefaultLimit),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
}

func meta(page, limit int, total int64, totalPages int) *response.Meta {
	return &response.Meta{Page: page, Limit: limit, TotalItems: total, TotalPages: totalPages}
}

// clientIP strips the port from RemoteAddr. RealIP runs earlier in the chain.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
