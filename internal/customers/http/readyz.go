package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/customers/pkg/customersdk"
	"github.com/aussiebroadwan/customers/pkg/httpx"
	"github.com/aussiebroadwan/customers/pkg/slogx"
)

// Pinger is the part of the store the readiness check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports the total number of stored clients.
type ClientCounter interface {
	CountClients(ctx context.Context) (int64, error)
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check
//	@Description	Checks database connectivity and reports the number of stored clients.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	customersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	customersdk.HealthResponse	"database unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db Pinger, counter ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &customersdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := db.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Error("readiness: database ping failed", "err", err)
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if n, err := counter.CountClients(ctx); err != nil {
			slogx.FromContext(ctx).Error("readiness: count clients failed", "err", err)
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks.ClientsCount = &n
		}

		httpx.WriteJSON(w, statusCode, customersdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
