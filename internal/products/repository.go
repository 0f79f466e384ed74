package products

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
)

// Repository wires together product and stock log persistence.
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

// FindByID loads a product regardless of lifecycle status.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns the sellable catalog, excluding soft-deleted products.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ProductStatusActive).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListAll returns every product, including soft-deleted ones.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// ListLowStock returns active products at or below the threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ProductStatusActive).
		Where("stock_level <= ?", threshold).
		Order("stock_level ASC").
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// AdjustStock applies a signed delta to the product's stock level.
func (r *Repository) AdjustStock(ctx context.Context, productID uint, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_level", gorm.Expr("stock_level + ?", delta)).
		Error
}

// AppendStockLog records one stock-affecting event. Entries are append-only.
func (r *Repository) AppendStockLog(ctx context.Context, entry *models.StockLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListStockLogs returns the audit trail, newest first.
func (r *Repository) ListStockLogs(ctx context.Context, productID *uint) ([]models.StockLog, error) {
	qb := r.db.WithContext(ctx).Order("date DESC, id DESC")
	if productID != nil {
		qb = qb.Where("product_id = ?", *productID)
	}
	var rows []models.StockLog
	err := qb.Find(&rows).Error
	return rows, err
}
