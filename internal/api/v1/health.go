package api

import (
	"context"
	"net/http"
	"time"

	"github.com/papyrusworks/papyrus/internal/server"
)

// HealthResponse reports process liveness and database reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler reports service health, pinging the database so load
// balancers see storage trouble before users do.
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		resp := &HealthResponse{
			Status:   "ok",
			Database: "ok",
		}
		httpCode := http.StatusOK

		sqlDB, err := srv.DB.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			srv.Logger.Error("health check database ping failed",
				"error", err,
			)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			httpCode = http.StatusServiceUnavailable
		}

		respondJSON(srv, w, r, httpCode, resp)
	})
}
