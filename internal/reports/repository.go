package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
)

// Repository reads order aggregates for reporting.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PaidOrderTotals returns the total_cents of every order in the window whose
// payment settled (paid or later refunded; refunds stay in gross revenue).
func (r *Repository) PaidOrderTotals(ctx context.Context, from, to time.Time) ([]int64, error) {
	var totals []int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("payment_status IN ?", []enums.PaymentStatus{
			enums.PaymentStatusPaid,
			enums.PaymentStatusRefunded,
		}).
		Pluck("total_cents", &totals).
		Error
	return totals, err
}

// StatusCount is one row of the status breakdown.
type StatusCount struct {
	Status enums.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
}

// StatusBreakdown counts all orders in the window grouped by status.
func (r *Repository) StatusBreakdown(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Order("status ASC").
		Scan(&rows).
		Error
	return rows, err
}

// RefundTotal sums the magnitude of negative payment records in the window.
func (r *Repository) RefundTotal(ctx context.Context, from, to time.Time) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Select("COALESCE(SUM(-amount_cents), 0)").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("amount_cents < 0").
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
