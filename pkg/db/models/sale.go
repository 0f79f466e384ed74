package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/pkg/enums"
)

// Sale is an immutable record of a finalized transaction. Only the Synced
// flag changes after creation. SyncID is the cross-device idempotence key
// and must survive export/import round-trips verbatim.
type Sale struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement"`
	InvoiceNumber string          `gorm:"column:invoice_number;not null;index"`
	CustomerCode  string          `gorm:"column:customer_code;not null;index"`
	CustomerName  string          `gorm:"column:customer_name;not null"`
	SalesmanID    string          `gorm:"column:salesman_id;not null;index"`
	Date          time.Time       `gorm:"column:date;not null;index"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric;not null"`
	Discount      decimal.Decimal `gorm:"column:discount;type:numeric;not null"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric;not null"`
	Synced        bool            `gorm:"column:synced;not null;default:false;index"`
	SyncID        string          `gorm:"column:sync_id;not null;uniqueIndex"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// SaleItem is one line of a sale, with name and price snapshotted at sale
// time so later catalog edits cannot rewrite history.
type SaleItem struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	SaleID      uint            `gorm:"column:sale_id;not null;index"`
	ProductID   uint            `gorm:"column:product_id;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Pack        enums.PackType  `gorm:"column:pack;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric;not null"`
}

// Weight returns the stock weight this line removes, in kilograms.
func (i SaleItem) Weight() decimal.Decimal {
	return i.Pack.UnitWeight().Mul(decimal.NewFromInt(int64(i.Quantity)))
}
