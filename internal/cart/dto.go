package cart

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
)

// ItemView is one cart line as returned to clients.
type ItemView struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductSKU      string    `json:"product_sku"`
	UnitPriceCents  int       `json:"unit_price_cents"`
	Quantity        int       `json:"quantity"`
	TotalPriceCents int       `json:"total_price_cents"`
	InStock         bool      `json:"in_stock"`
}

// View is the assembled cart with recomputed totals.
type View struct {
	Items         []ItemView `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	SubtotalCents int        `json:"subtotal_cents"`
}

// BuildView walks the rows once and derives all totals.
func BuildView(rows []models.CartItem) *View {
	view := &View{Items: make([]ItemView, 0, len(rows))}
	for _, row := range rows {
		item := ItemView{
			ID:              row.ID,
			ProductID:       row.ProductID,
			UnitPriceCents:  row.UnitPriceCents,
			Quantity:        row.Quantity,
			TotalPriceCents: row.UnitPriceCents * row.Quantity,
		}
		if row.Product != nil {
			item.ProductName = row.Product.Name
			item.ProductSKU = row.Product.SKU
			item.InStock = row.Product.StockQuantity >= row.Quantity
		}
		view.Items = append(view.Items, item)
		view.TotalQuantity += row.Quantity
		view.SubtotalCents += item.TotalPriceCents
	}
	return view
}
