package api

import (
	"net/http"

	"github.com/hashicorp-forge/dropinblog/internal/server"
	"github.com/hashicorp-forge/dropinblog/internal/version"
)

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Triggers int    `json:"triggers"`
	Database string `json:"database,omitempty"`
}

// HealthHandler reports liveness and, when a database is open, whether it
// answers.
func HealthHandler(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Version:  version.Version,
			Triggers: len(srv.Triggers),
		}

		status := http.StatusOK
		if srv.DB != nil {
			resp.Database = "ok"
			sqlDB, err := srv.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(r.Context())
			}
			if err != nil {
				srv.Logger.Warn("database health check failed", "error", err)
				resp.Status = "degraded"
				resp.Database = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		respondJSON(w, status, resp)
	}
}
