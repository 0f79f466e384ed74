package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLog is an append-only audit entry, one per stock-affecting event.
// Nothing updates or deletes rows here except the maintenance purge.
type StockLog struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID   uint            `gorm:"column:product_id;not null;index"`
	ProductName string          `gorm:"column:product_name;not null"`
	Change      decimal.Decimal `gorm:"column:change;type:numeric;not null"`
	Date        time.Time       `gorm:"column:date;not null;index"`
	Reason      string          `gorm:"column:reason;not null"`
}
