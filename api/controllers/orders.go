package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/orders"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// OrdersController serves buyer-facing order placement and reads.
type OrdersController struct {
	service orders.Service
	log     *logger.Logger
}

// NewOrdersController wires the order service into HTTP handlers.
func NewOrdersController(service orders.Service, log *logger.Logger) *OrdersController {
	return &OrdersController{service: service, log: log}
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address      `json:"shipping_address" validate:"required"`
	BillingAddress  *types.Address     `json:"billing_address,omitempty"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	Notes           *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type patchOrderRequest struct {
	Action *string `json:"action,omitempty" validate:"omitempty,oneof=cancel"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Create places an order from the submitted lines.
func (c *OrdersController) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	// payment method is optional; the service defaults it to bank transfer
	var method enums.PaymentMethod
	if req.PaymentMethod != "" {
		parsed, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method"))
			return
		}
		method = parsed
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := c.service.Create(r.Context(), orders.CreateInput{
		UserID:          middleware.UserIDFromContext(r.Context()),
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   method,
		Notes:           req.Notes,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, order, "order placed")
}

// List returns the caller's own orders, newest first.
func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	input := orders.ListInput{
		UserID:     middleware.UserIDFromContext(r.Context()),
		Pagination: params,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			responses.WriteError(w, r, c.log,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}
		input.Status = &status
	}

	result, err := c.service.List(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"orders": result.Orders,
		"meta":   result.Meta,
	}, "")
}

// Get returns one of the caller's orders with its lines and status history.
func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	order, err := c.service.Get(r.Context(), orderID, middleware.UserIDFromContext(r.Context()), false)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order, "")
}

// Patch cancels a pending order (action=cancel) or updates its notes.
func (c *OrdersController) Patch(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	var req patchOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())

	if req.Action != nil && *req.Action == "cancel" {
		order, err := c.service.Cancel(r.Context(), orders.CancelInput{
			OrderID: orderID,
			UserID:  userID,
			Reason:  req.Reason,
		})
		if err != nil {
			responses.WriteError(w, r, c.log, err)
			return
		}
		responses.WriteSuccess(w, order, "order cancelled")
		return
	}

	if req.Notes == nil {
		responses.WriteError(w, r, c.log,
			pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
		return
	}
	order, err := c.service.UpdateNotes(r.Context(), orderID, userID, *req.Notes)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order, "order updated")
}
