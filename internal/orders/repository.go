package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// Repository persists orders and their child rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateOrder inserts the order header. IDs are assigned here so the caller
// sees them without relying on a backend-specific column default.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrderItems inserts the snapshot line rows.
func (r *Repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// CreateStatusLog appends one audit row.
func (r *Repository) CreateStatusLog(ctx context.Context, log *models.OrderStatusLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// CreatePaymentRecord inserts a payment (or refund when negative) row.
func (r *Repository) CreatePaymentRecord(ctx context.Context, record *models.PaymentRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID loads the order with items and status logs.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindHeaderByID loads the order row without associations.
func (r *Repository) FindHeaderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the buyer's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, input ListInput) (*ListResult, error) {
	params := pagination.Normalize(input.Pagination)

	qb := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", input.UserID)
	if input.Status != nil {
		qb = qb.Where("status = ?", *input.Status)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := qb.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	return &ListResult{Orders: rows, Meta: pagination.NewMeta(params, total)}, nil
}

// AdminList returns all orders with optional status/payment/user filters.
func (r *Repository) AdminList(ctx context.Context, input AdminListInput) (*ListResult, error) {
	params := pagination.Normalize(input.Pagination)

	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if input.Status != nil {
		qb = qb.Where("status = ?", *input.Status)
	}
	if input.PaymentStatus != nil {
		qb = qb.Where("payment_status = ?", *input.PaymentStatus)
	}
	if input.UserID != nil {
		qb = qb.Where("user_id = ?", *input.UserID)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := qb.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	return &ListResult{Orders: rows, Meta: pagination.NewMeta(params, total)}, nil
}

// UpdateOrder applies the column updates to a single order row.
func (r *Repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

// DecrementStock conditionally takes stock from an active product. The guard
// in the WHERE clause is what makes concurrent checkouts safe: the row is only
// touched when enough stock remains.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ? AND stock_quantity >= ?
	`, qty, productID, enums.ProductStatusActive, qty)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// FindProductForOrder loads the product row referenced by an order line.
func (r *Repository) FindProductForOrder(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListStatusLogs returns the audit trail for an order oldest first.
func (r *Repository) ListStatusLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusLog, error) {
	var rows []models.OrderStatusLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListPaymentRecords returns the payment rows for an order oldest first.
func (r *Repository) ListPaymentRecords(ctx context.Context, orderID uuid.UUID) ([]models.PaymentRecord, error) {
	var rows []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}
