package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/api/validators"
	"github.com/oakmart/storefront-backend/internal/cart"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

// GuestCartController serves anonymous carts keyed by a client-held token.
// Product existence and stock are checked at merge/checkout time, not here.
type GuestCartController struct {
	store *cart.GuestStore
	log   *logger.Logger
}

// NewGuestCartController wires the guest cart store into HTTP handlers.
func NewGuestCartController(store *cart.GuestStore, log *logger.Logger) *GuestCartController {
	return &GuestCartController{store: store, log: log}
}

type guestCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type guestCartUpdateRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// Create allocates a fresh guest cart token.
func (c *GuestCartController) Create(w http.ResponseWriter, r *http.Request) {
	guest, err := c.store.Create(r.Context())
	if err != nil {
		responses.WriteError(w, r, c.log,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create guest cart"))
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, guest, "guest cart created")
}

// Get loads the cart stored under the token.
func (c *GuestCartController) Get(w http.ResponseWriter, r *http.Request) {
	guest, err := c.load(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, guest, "")
}

// AddItem merges a product line into the guest cart.
func (c *GuestCartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req guestCartItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	guest, err := c.store.AddItem(r.Context(), chi.URLParam(r, "token"), req.ProductID, req.Quantity)
	if err != nil {
		responses.WriteError(w, r, c.log, guestCartError(err))
		return
	}
	responses.WriteSuccess(w, guest, "item added")
}

// UpdateItem sets a line's quantity; zero or negative removes the line.
func (c *GuestCartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req guestCartUpdateRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	guest, err := c.store.UpdateItem(r.Context(), chi.URLParam(r, "token"), req.ProductID, req.Quantity)
	if err != nil {
		responses.WriteError(w, r, c.log, guestCartError(err))
		return
	}
	responses.WriteSuccess(w, guest, "item updated")
}

// Delete drops the guest cart.
func (c *GuestCartController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Delete(r.Context(), chi.URLParam(r, "token")); err != nil {
		responses.WriteError(w, r, c.log,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete guest cart"))
		return
	}
	responses.WriteSuccess(w, nil, "guest cart deleted")
}

func (c *GuestCartController) load(r *http.Request) (*cart.GuestCart, error) {
	guest, err := c.store.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		return nil, guestCartError(err)
	}
	return guest, nil
}

func guestCartError(err error) error {
	if errors.Is(err, cart.ErrGuestCartNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "guest cart not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "guest cart operation")
}
