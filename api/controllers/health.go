package controllers

import (
	"context"
	"net/http"

	"github.com/oakmart/storefront-backend/api/responses"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	db    pinger
	redis pinger
	log   *logger.Logger
}

// NewHealthController wires the probe dependencies; either pinger may be nil.
func NewHealthController(db, redis pinger, log *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, log: log}
}

// Live reports that the process is up.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"}, "")
}

// Ready reports whether the backing stores answer.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{}
	healthy := true

	if c.db != nil {
		checks["database"] = "ok"
		if err := c.db.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
			healthy = false
			if c.log != nil {
				c.log.Error(ctx, "readiness: database ping failed", err)
			}
		}
	}
	if c.redis != nil {
		checks["redis"] = "ok"
		if err := c.redis.Ping(ctx); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
			if c.log != nil {
				c.log.Error(ctx, "readiness: redis ping failed", err)
			}
		}
	}

	if !healthy {
		responses.WriteError(w, r, c.log,
			pkgerrors.New(pkgerrors.CodeDependency, "service not ready").
				WithDetails(checks))
		return
	}
	responses.WriteSuccess(w, checks, "")
}
