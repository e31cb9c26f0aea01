package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

const defaultAdminCancelReason = "cancelled by admin"

// Transition moves an order to the target status, stamps the matching
// lifecycle timestamp, and appends one audit row. Cancelling a paid order also
// records the refund, all in the same transaction.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindHeaderByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.Target {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already in requested status").
				WithDetails(map[string]any{"status": order.Status})
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": input.Target}

		switch input.Target {
		case enums.OrderStatusPaid:
			updates["payment_status"] = enums.PaymentStatusPaid
			updates["payment_confirmed_at"] = now
		case enums.OrderStatusProcessing:
			updates["processing_started_at"] = now
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			reason := defaultAdminCancelReason
			if input.Notes != nil && strings.TrimSpace(*input.Notes) != "" {
				reason = strings.TrimSpace(*input.Notes)
			}
			updates["cancel_reason"] = reason

			// Cancelling a settled order refunds it in the same commit.
			if order.PaymentStatus == enums.PaymentStatusPaid {
				updates["payment_status"] = enums.PaymentStatusRefunded
				record := &models.PaymentRecord{
					OrderID:     order.ID,
					AmountCents: -order.TotalCents,
					Method:      order.PaymentMethod,
					Notes:       strPtr("refund on cancellation"),
				}
				if err := repo.CreatePaymentRecord(ctx, record); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert refund record")
				}
			}
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		log := &models.OrderStatusLog{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   input.Target,
			ActorID:    input.ActorID,
			Notes:      input.Notes,
		}
		if err := repo.CreateStatusLog(ctx, log); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status log")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition order")
	}

	return s.repo.FindByID(ctx, input.OrderID)
}

// Cancel lets a buyer cancel their own order while it is still pending.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindHeaderByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		now := time.Now().UTC()
		reason := "cancelled by buyer"
		if input.Reason != nil && strings.TrimSpace(*input.Reason) != "" {
			reason = strings.TrimSpace(*input.Reason)
		}
		updates := map[string]any{
			"status":        enums.OrderStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		log := &models.OrderStatusLog{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   enums.OrderStatusCancelled,
			ActorID:    input.UserID,
			Notes:      input.Reason,
		}
		if err := repo.CreateStatusLog(ctx, log); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status log")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
	}

	return s.repo.FindByID(ctx, input.OrderID)
}

func strPtr(s string) *string {
	return &s
}
