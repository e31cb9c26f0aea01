package controllers

import (
	"net/http"
	"strings"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/orders"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// AdminOrdersController serves the fulfillment side of the order workflow.
type AdminOrdersController struct {
	service orders.Service
	log     *logger.Logger
}

// NewAdminOrdersController wires the order service into the admin endpoints.
func NewAdminOrdersController(service orders.Service, log *logger.Logger) *AdminOrdersController {
	return &AdminOrdersController{service: service, log: log}
}

type transitionOrderRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// List returns all orders with admin filters.
func (c *AdminOrdersController) List(w http.ResponseWriter, r *http.Request) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := orders.AdminListInput{Pagination: params}
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}
		input.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status"))
			return
		}
		input.PaymentStatus = &status
	}
	if userID, err := validators.ParseQueryUUID(r, "user_id"); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	} else if userID != nil {
		input.UserID = userID
	}

	result, err := c.service.AdminList(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"orders": result.Orders,
		"meta":   result.Meta,
	}, "")
}

// Get returns any order by ID.
func (c *AdminOrdersController) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	order, err := c.service.Get(r.Context(), orderID, middleware.UserIDFromContext(r.Context()), true)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order, "")
}

// UpdateStatus walks an order through the fulfillment lifecycle.
func (c *AdminOrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	var req transitionOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	target, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		responses.WriteError(w, r, c.log,
			pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
		return
	}

	order, err := c.service.Transition(r.Context(), orders.TransitionInput{
		OrderID: orderID,
		Target:  target,
		ActorID: middleware.UserIDFromContext(r.Context()),
		Notes:   req.Notes,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order, "order status updated")
}
