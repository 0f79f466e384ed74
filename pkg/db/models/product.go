package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/pkg/enums"
)

// Product is a sellable item in the device-local catalog. The integer primary
// key is assigned per device and must never be used as a cross-device key.
type Product struct {
	ID         uint                `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string              `gorm:"column:name;not null;index"`
	Price1Kg   decimal.Decimal     `gorm:"column:price_1kg;type:numeric;not null"`
	PriceHalf  decimal.Decimal     `gorm:"column:price_05kg;type:numeric;not null"`
	StockLevel decimal.Decimal     `gorm:"column:stock_level;type:numeric;not null"`
	Status     enums.ProductStatus `gorm:"column:status;not null;default:active;index"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p Product) IsDeleted() bool {
	return p.Status == enums.ProductStatusDeleted
}
