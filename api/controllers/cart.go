package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// CartController serves the signed-in user's persistent cart.
type CartController struct {
	service cart.Service
	log     *logger.Logger
}

// NewCartController wires the cart service into HTTP handlers.
func NewCartController(service cart.Service, log *logger.Logger) *CartController {
	return &CartController{service: service, log: log}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the cart with recomputed totals.
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	view, err := c.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view, "")
}

// AddItem adds a product to the cart, merging into an existing line.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	view, err := c.service.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, view, "item added")
}

// UpdateItem sets a line's quantity; zero or negative removes the line.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	var req updateCartItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	view, err := c.service.UpdateItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID, req.Quantity)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view, "item updated")
}

// RemoveItem deletes a single cart line.
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := validators.ParseUUIDParam(r, "id")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	view, err := c.service.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, view, "item removed")
}

// Clear empties the cart.
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, nil, "cart cleared")
}
