package models

import "time"

// Setting is a single-row key/value override store. Today it only carries
// the admin-secret hash when the operator changes it from the default.
type Setting struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string    `gorm:"column:key;not null;uniqueIndex"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Setting keys.
const (
	SettingAdminSecretHash = "admin_secret_hash"
)
