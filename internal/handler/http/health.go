package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

type HealthHandler struct {
	db      Pinger
	started time.Time
}

// NewHealthHandler takes a nil db when running without a database.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.started).Seconds()

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			response.ServiceUnavailable(w, "database unavailable")
			return
		}
	}

	response.Success(w, HealthResponse{Status: "ok", Uptime: uptime})
}
