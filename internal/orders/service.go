package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/types"
)

const maxOrderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order placement, buyer reads, and the status workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	AdminList(ctx context.Context, input AdminListInput) (*ListResult, error)
	Get(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	UpdateNotes(ctx context.Context, orderID, userID uuid.UUID, notes string) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	cartRepo *cart.Repository
}

// NewService builds the order service. The cart repository is optional; when
// present, successful creation clears the buyer's persistent cart.
func NewService(repo *Repository, tx txRunner, cartRepo *cart.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, cartRepo: cartRepo}, nil
}

// Create places an order. Stock decrements, the header, the item snapshots,
// and the cart clear all commit or roll back together; the order number is
// retried on the (rare) unique collision.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	items, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}
	if err := validateShippingAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	billing := input.BillingAddress
	if billing == nil || billing.IsZero() {
		shipping := input.ShippingAddress
		billing = &shipping
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, err := GenerateOrderNumber(time.Now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate order number")
		}

		var orderID uuid.UUID
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			subtotal := 0
			snapshots := make([]models.OrderItem, 0, len(items))
			for _, line := range items {
				product, err := repo.FindProductForOrder(ctx, line.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found").
							WithDetails(map[string]any{"product_id": line.ProductID})
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
				if product.Status != enums.ProductStatusActive {
					return pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found").
						WithDetails(map[string]any{"product_id": line.ProductID})
				}

				rows, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if rows == 0 {
					return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
						WithDetails(map[string]any{
							"product_id":   product.ID,
							"product_name": product.Name,
							"available":    product.StockQuantity,
							"requested":    line.Quantity,
						})
				}

				subtotal += product.PriceCents * line.Quantity
				snapshots = append(snapshots, models.OrderItem{
					ProductID:       product.ID,
					ProductName:     product.Name,
					ProductSKU:      product.SKU,
					UnitPriceCents:  product.PriceCents,
					Quantity:        line.Quantity,
					TotalPriceCents: product.PriceCents * line.Quantity,
				})
			}

			taxCents, shippingCents, discountCents := 0, 0, 0
			order := &models.Order{
				OrderNumber:     number,
				UserID:          input.UserID,
				Status:          enums.OrderStatusPending,
				PaymentStatus:   enums.PaymentStatusPending,
				PaymentMethod:   method,
				SubtotalCents:   subtotal,
				TaxCents:        taxCents,
				ShippingCents:   shippingCents,
				DiscountCents:   discountCents,
				TotalCents:      subtotal + taxCents + shippingCents - discountCents,
				ShippingAddress: input.ShippingAddress,
				BillingAddress:  billing,
				Notes:           input.Notes,
			}
			created, err := repo.CreateOrder(ctx, order)
			if err != nil {
				return err
			}
			orderID = created.ID

			for i := range snapshots {
				snapshots[i].OrderID = created.ID
			}
			if err := repo.CreateOrderItems(ctx, snapshots); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order items")
			}

			if s.cartRepo != nil {
				if err := s.cartRepo.WithTx(tx).ClearUser(ctx, input.UserID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
				}
			}
			return nil
		})
		if err == nil {
			return s.repo.FindByID(ctx, orderID)
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if db.IsUniqueViolation(err) {
			lastErr = err
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "order number collisions exhausted retries")
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	result, err := s.repo.ListByUser(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	result, err := s.repo.AdminList(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) UpdateNotes(ctx context.Context, orderID, userID uuid.UUID, notes string) (*models.Order, error) {
	order, err := s.Get(ctx, orderID, userID, false)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(notes)
	if err := s.repo.UpdateOrder(ctx, order.ID, map[string]any{"notes": trimmed}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notes")
	}
	return s.repo.FindByID(ctx, order.ID)
}

func normalizeItems(items []ItemInput) ([]ItemInput, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidItems, "at least one item is required")
	}

	merged := make([]ItemInput, 0, len(items))
	index := map[uuid.UUID]int{}
	for i, line := range items {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidItems, "item product id required").
				WithDetails(map[string]any{"index": i})
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidItems, "item quantity must be positive").
				WithDetails(map[string]any{"index": i, "product_id": line.ProductID})
		}
		if at, ok := index[line.ProductID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func validateShippingAddress(addr types.Address) error {
	missing := []string{}
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check("name", addr.Name)
	check("phone", addr.Phone)
	check("province", addr.Province)
	check("city", addr.City)
	check("district", addr.District)
	check("line", addr.Line)
	check("postal_code", addr.PostalCode)

	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidAddress, "shipping address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}
