package orders

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	UserID          uuid.UUID
	Items           []ItemInput
	ShippingAddress types.Address
	BillingAddress  *types.Address
	PaymentMethod   enums.PaymentMethod
	Notes           *string
}

// ListInput paginates a buyer's own orders.
type ListInput struct {
	UserID     uuid.UUID
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// AdminListInput paginates all orders with admin-only filters.
type AdminListInput struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	UserID        *uuid.UUID
	Pagination    pagination.Params
}

// ListResult pairs a page of orders with its pagination metadata.
type ListResult struct {
	Orders []models.Order
	Meta   pagination.Meta
}

// TransitionInput is an admin-driven status change.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	ActorID uuid.UUID
	Notes   *string
}

// CancelInput is a buyer cancelling their own pending order.
type CancelInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	Reason  *string
}
