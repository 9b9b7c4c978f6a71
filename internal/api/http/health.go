package http

import (
	"context"
	"net/http"
	"time"

	"github.com/comepass/comepass/internal/api/cache"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/httpx"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is up.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

type ReadyzResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and Redis; 503 when either dependency is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	ReadyzResponse
//	@Failure		503	{object}	ReadyzResponse
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, c *cache.AccessTokenCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := ReadyzResponse{Status: "ok", Checks: map[string]string{
			"database": "ok",
			"redis":    "ok",
		}}
		code := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Checks["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := c.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Checks["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, resp)
	}
}
