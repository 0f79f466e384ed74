package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price1Kg   decimal.Decimal `json:"price_1kg"`
	PriceHalf  decimal.Decimal `json:"price_05kg"`
	StockLevel decimal.Decimal `json:"stock_level"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StockLogDTO exposes one audit trail entry.
type StockLogDTO struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Change      decimal.Decimal `json:"change"`
	Date        time.Time       `json:"date"`
	Reason      string          `json:"reason"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:         product.ID,
		Name:       product.Name,
		Price1Kg:   product.Price1Kg,
		PriceHalf:  product.PriceHalf,
		StockLevel: product.StockLevel,
		Status:     product.Status.String(),
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models.
func NewProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}

// NewStockLogDTOs maps audit entries for the API.
func NewStockLogDTOs(rows []models.StockLog) []StockLogDTO {
	out := make([]StockLogDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StockLogDTO{
			ID:          row.ID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Change:      row.Change,
			Date:        row.Date,
			Reason:      row.Reason,
		})
	}
	return out
}
