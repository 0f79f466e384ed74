package sync

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db/models"
)

// Repository holds the snapshot-level table operations that only the sync
// engine is allowed to perform.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// SnapshotAll reads every table for a master export.
func (r *Repository) SnapshotAll(ctx context.Context) ([]models.Product, []models.Customer, []models.Sale, []models.StockLog, error) {
	tx := r.db.WithContext(ctx)

	var products []models.Product
	if err := tx.Order("id ASC").Find(&products).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	var customers []models.Customer
	if err := tx.Order("id ASC").Find(&customers).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	var sales []models.Sale
	if err := tx.Preload("Items").Order("id ASC").Find(&sales).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	var stockLogs []models.StockLog
	if err := tx.Order("id ASC").Find(&stockLogs).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	return products, customers, sales, stockLogs, nil
}

// ClearProducts removes every product row.
func (r *Repository) ClearProducts(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Product{}).Error
}

// ClearCustomers removes every customer row.
func (r *Repository) ClearCustomers(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Customer{}).Error
}

// ClearSales removes every sale and, through the cascade, its line items.
func (r *Repository) ClearSales(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Sale{}).Error
}

// ClearStockLogs removes every audit entry.
func (r *Repository) ClearStockLogs(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.StockLog{}).Error
}

// InsertProducts bulk-inserts snapshot products, preserving identifiers so
// sale line references keep resolving.
func (r *Repository) InsertProducts(ctx context.Context, rows []models.Product) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// InsertCustomers bulk-inserts snapshot customers.
func (r *Repository) InsertCustomers(ctx context.Context, rows []models.Customer) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// UpsertCustomerByCode inserts the customer or refreshes the existing row
// that shares its code.
func (r *Repository) UpsertCustomerByCode(ctx context.Context, customer models.Customer) error {
	var existing models.Customer
	err := r.db.WithContext(ctx).First(&existing, "code = ?", customer.Code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer.ID = 0
		return r.db.WithContext(ctx).Create(&customer).Error
	}
	if err != nil {
		return err
	}
	existing.Name = customer.Name
	existing.Address = customer.Address
	existing.Mobile = customer.Mobile
	return r.db.WithContext(ctx).Save(&existing).Error
}

// InsertSales bulk-inserts snapshot sales with their items.
func (r *Repository) InsertSales(ctx context.Context, rows []models.Sale) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// InsertStockLogs bulk-inserts snapshot audit entries.
func (r *Repository) InsertStockLogs(ctx context.Context, rows []models.StockLog) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
