package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db/models"
)

// Repository persists sales and their line items.
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

// Create inserts the sale together with its line items.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// ExistsBySyncID reports whether a sale with the given dedup key is
// already present locally.
func (r *Repository) ExistsBySyncID(ctx context.Context, syncID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("sync_id = ?", syncID).
		Count(&count).
		Error
	return count > 0, err
}

// MaxInvoiceNumber returns the highest invoice number among all locally
// known sales for the salesman, zero when none exist.
func (r *Repository) MaxInvoiceNumber(ctx context.Context, salesmanID string) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("salesman_id = ?", salesmanID).
		Select("COALESCE(MAX(CAST(invoice_number AS INTEGER)), 0)").
		Scan(&max).
		Error
	return max, err
}

// ListFilters narrows sale history queries.
type ListFilters struct {
	SalesmanID string
	From       *time.Time
	To         *time.Time
}

// List returns sales with items preloaded, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Sale, error) {
	qb := r.db.WithContext(ctx).
		Preload("Items").
		Order("date DESC, id DESC")
	if filters.SalesmanID != "" {
		qb = qb.Where("salesman_id = ?", filters.SalesmanID)
	}
	if filters.From != nil {
		qb = qb.Where("date >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("date < ?", *filters.To)
	}
	var rows []models.Sale
	err := qb.Find(&rows).Error
	return rows, err
}

// ListUnsynced returns the salesman's sales that have not been exported
// yet, oldest first so export files read chronologically.
func (r *Repository) ListUnsynced(ctx context.Context, salesmanID string) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("salesman_id = ? AND synced = ?", salesmanID, false).
		Order("date ASC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

// MarkSynced flips the synced flag on the given sales.
func (r *Repository) MarkSynced(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id IN ?", ids).
		Update("synced", true).
		Error
}

// CountPending returns the number of unsynced sales for the salesman.
func (r *Repository) CountPending(ctx context.Context, salesmanID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("salesman_id = ? AND synced = ?", salesmanID, false).
		Count(&count).
		Error
	return count, err
}

// SalesmanTotals aggregates revenue and bill count for one salesman.
type SalesmanTotals struct {
	Total decimal.Decimal
	Bills int64
}

// Totals sums total_amount and counts bills for the salesman.
func (r *Repository) Totals(ctx context.Context, salesmanID string) (SalesmanTotals, error) {
	var row struct {
		Total decimal.Decimal
		Bills int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("salesman_id = ?", salesmanID).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS bills").
		Scan(&row).
		Error
	return SalesmanTotals{Total: row.Total, Bills: row.Bills}, err
}
