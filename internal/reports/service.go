package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// RevenueInput bounds the reporting window; [From, To).
type RevenueInput struct {
	From time.Time
	To   time.Time
}

// RevenueSummary is the admin revenue report. Monetary values are decimal
// currency units (cents divided by 100) so averages keep their fractions.
type RevenueSummary struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	OrderCount        int64           `json:"order_count"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	RefundTotal       decimal.Decimal `json:"refund_total"`
	StatusBreakdown   []StatusCount   `json:"status_breakdown"`
}

// Service computes admin reports.
type Service interface {
	Revenue(ctx context.Context, input RevenueInput) (*RevenueSummary, error)
}

type service struct {
	repo *Repository
}

// NewService builds the reports service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

var centsPerUnit = decimal.NewFromInt(100)

func (s *service) Revenue(ctx context.Context, input RevenueInput) (*RevenueSummary, error) {
	if input.From.IsZero() || input.To.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if !input.To.After(input.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}

	totals, err := s.repo.PaidOrderTotals(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order totals")
	}

	gross := decimal.Zero
	for _, cents := range totals {
		gross = gross.Add(decimal.NewFromInt(cents))
	}
	gross = gross.Div(centsPerUnit)

	average := decimal.Zero
	if len(totals) > 0 {
		average = gross.DivRound(decimal.NewFromInt(int64(len(totals))), 2)
	}

	refundCents, err := s.repo.RefundTotal(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund total")
	}

	breakdown, err := s.repo.StatusBreakdown(ctx, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status breakdown")
	}

	return &RevenueSummary{
		From:              input.From,
		To:                input.To,
		OrderCount:        int64(len(totals)),
		GrossRevenue:      gross,
		AverageOrderValue: average,
		RefundTotal:       decimal.NewFromInt(refundCents).Div(centsPerUnit),
		StatusBreakdown:   breakdown,
	}, nil
}
