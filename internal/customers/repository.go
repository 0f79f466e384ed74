package customers

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db/models"
)

// Repository persists customer records.
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

// FindByID loads the customer by its local identifier.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByCode loads the customer by its cross-device code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns customers ordered by name, optionally filtered by a search
// term matched against name and mobile.
func (r *Repository) List(ctx context.Context, search string) ([]models.Customer, error) {
	qb := r.db.WithContext(ctx).Order("name ASC")
	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR mobile LIKE ?)", pattern, pattern)
	}
	var rows []models.Customer
	err := qb.Find(&rows).Error
	return rows, err
}

// Create inserts a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Update saves an existing customer row.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes a customer by local identifier.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{}).Error
}
