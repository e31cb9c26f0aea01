package controllers

import (
	"net/http"
	"time"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/reports"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// Default reporting window when the query omits bounds.
const defaultRevenueWindow = 30 * 24 * time.Hour

// AdminReportsController serves the admin reporting endpoints.
type AdminReportsController struct {
	service reports.Service
	log     *logger.Logger
}

// NewAdminReportsController wires the reports service into the admin endpoints.
func NewAdminReportsController(service reports.Service, log *logger.Logger) *AdminReportsController {
	return &AdminReportsController{service: service, log: log}
}

// Revenue returns the revenue summary for [from, to). Bounds default to the
// last 30 days.
func (c *AdminReportsController) Revenue(w http.ResponseWriter, r *http.Request) {
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		start := to.Add(-defaultRevenueWindow)
		from = &start
	}

	summary, err := c.service.Revenue(r.Context(), reports.RevenueInput{From: *from, To: *to})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, summary, "")
}
