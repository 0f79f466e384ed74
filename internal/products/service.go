package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// DefaultLowStockThreshold marks products that need restocking soon.
var DefaultLowStockThreshold = decimal.NewFromInt(10)

// DefaultAdjustReason tags manual stock corrections without an explicit note.
const DefaultAdjustReason = "Restock"

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uint, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uint) error
	ListCatalog(ctx context.Context) ([]ProductDTO, error)
	ListAll(ctx context.Context) ([]ProductDTO, error)
	ListLowStock(ctx context.Context) ([]ProductDTO, error)
	AdjustStock(ctx context.Context, productID uint, input AdjustStockInput) (*ProductDTO, error)
	ListStockLogs(ctx context.Context, productID *uint) ([]StockLogDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name       string
	Price1Kg   decimal.Decimal
	PriceHalf  decimal.Decimal
	StockLevel decimal.Decimal
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name      *string
	Price1Kg  *decimal.Decimal
	PriceHalf *decimal.Decimal
}

// AdjustStockInput applies a signed correction to a product's stock.
type AdjustStockInput struct {
	Delta  decimal.Decimal
	Reason string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price1Kg.IsNegative() || input.PriceHalf.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}

	product := &models.Product{
		Name:       name,
		Price1Kg:   input.Price1Kg,
		PriceHalf:  input.PriceHalf,
		StockLevel: input.StockLevel,
		Status:     enums.ProductStatusActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uint, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product has been deleted")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		product.Name = name
	}
	if input.Price1Kg != nil {
		if input.Price1Kg.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.Price1Kg = *input.Price1Kg
	}
	if input.PriceHalf != nil {
		if input.PriceHalf.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.PriceHalf = *input.PriceHalf
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct soft-deletes: sales and stock logs that reference the
// product must remain resolvable, so rows are never removed.
func (s *service) DeleteProduct(ctx context.Context, productID uint) error {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.IsDeleted() {
		return nil
	}
	product.Status = enums.ProductStatusDeleted
	if _, err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: soft delete product")
	}
	return nil
}

func (s *service) ListCatalog(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
	}
	return NewProductDTOs(rows), nil
}

func (s *service) ListLowStock(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListLowStock(ctx, DefaultLowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list low stock")
	}
	return NewProductDTOs(rows), nil
}

// AdjustStock applies a manual signed correction inside one transaction so
// the stock change and its audit entry cannot diverge.
func (s *service) AdjustStock(ctx context.Context, productID uint, input AdjustStockInput) (*ProductDTO, error) {
	if input.Delta.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock adjustment cannot be zero")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = DefaultAdjustReason
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product has been deleted")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.AdjustStock(ctx, product.ID, input.Delta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: adjust stock")
		}
		entry := &models.StockLog{
			ProductID:   product.ID,
			ProductName: product.Name,
			Change:      input.Delta,
			Date:        s.now().UTC(),
			Reason:      reason,
		}
		if err := txRepo.AppendStockLog(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: append stock log")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	refreshed, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: reload product")
	}
	return NewProductDTO(refreshed), nil
}

func (s *service) ListStockLogs(ctx context.Context, productID *uint) ([]StockLogDTO, error) {
	rows, err := s.repo.ListStockLogs(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list stock logs")
	}
	return NewStockLogDTOs(rows), nil
}

func (s *service) loadProduct(ctx context.Context, productID uint) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load product")
	}
	return product, nil
}
