package models

import "time"

// Customer is a buyer. Code is the cross-device join key: two records on
// different devices describe the same customer iff their codes match.
type Customer struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null;index"`
	Address   string    `gorm:"column:address"`
	Mobile    string    `gorm:"column:mobile;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
