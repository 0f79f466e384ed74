package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/internal/invoice"
	"github.com/avstore/avpos-backend/internal/products"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// Service exposes sale recording and history operations.
type Service interface {
	FinalizeSale(ctx context.Context, input FinalizeSaleInput) (*SaleDTO, error)
	ListSales(ctx context.Context, filters ListFilters) ([]SaleDTO, error)
	Summary(ctx context.Context, salesmanID string) (*SummaryDTO, error)
}

// CartItem is one line of the cart being finalized.
type CartItem struct {
	ProductID uint
	Pack      enums.PackType
	Quantity  int
}

// FinalizeSaleInput holds the validated checkout payload.
type FinalizeSaleInput struct {
	CustomerCode string
	SalesmanID   string
	Items        []CartItem
	Discount     decimal.Decimal
}

type service struct {
	repo         *Repository
	productRepo  *products.Repository
	customerRepo *customers.Repository
	dbClient     *db.Client
	now          func() time.Time
}

// NewService constructs a sale recording service.
func NewService(repo *Repository, productRepo *products.Repository, customerRepo *customers.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:         repo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		dbClient:     dbClient,
		now:          time.Now,
	}, nil
}

// FinalizeSale commits the cart as an immutable Sale. The invoice number,
// sale row, stock decrements, and audit entries are written in one
// transaction: a storage failure anywhere leaves no trace of the sale.
func (s *service) FinalizeSale(ctx context.Context, input FinalizeSaleInput) (*SaleDTO, error) {
	salesmanID := strings.ToUpper(strings.TrimSpace(input.SalesmanID))
	if _, err := invoice.Base(salesmanID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CustomerCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a customer must be selected")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if !item.Pack.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown pack type %q", item.Pack))
		}
	}
	if input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}

	customer, err := s.customerRepo.FindByCode(ctx, strings.TrimSpace(input.CustomerCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load customer")
	}

	var created *models.Sale
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txSales := s.repo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)

		authority, err := invoice.NewAuthority(txSales)
		if err != nil {
			return err
		}
		invoiceNo, err := authority.Next(ctx, salesmanID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		sale := &models.Sale{
			InvoiceNumber: strconv.FormatInt(invoiceNo, 10),
			CustomerCode:  customer.Code,
			CustomerName:  customer.Name,
			SalesmanID:    salesmanID,
			Date:          now,
			Discount:      input.Discount,
			SyncID:        fmt.Sprintf("%s_%d_%d", salesmanID, invoiceNo, now.UnixMilli()),
			Synced:        false,
		}

		subtotal := decimal.Zero
		for _, cartItem := range input.Items {
			product, err := txProducts.FindByID(ctx, cartItem.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound,
						fmt.Sprintf("product %d not found", cartItem.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load product")
			}
			if product.IsDeleted() {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("product %q is no longer sold", product.Name))
			}

			price := product.Price1Kg
			if cartItem.Pack == enums.PackTypeHalf {
				price = product.PriceHalf
			}
			lineTotal := price.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			sale.Items = append(sale.Items, models.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Pack:        cartItem.Pack,
				Quantity:    cartItem.Quantity,
				Price:       price,
				Total:       lineTotal,
			})
		}

		sale.Subtotal = subtotal
		sale.TotalAmount = subtotal.Sub(input.Discount)
		if sale.TotalAmount.IsNegative() {
			sale.TotalAmount = decimal.Zero
		}

		if _, err := txSales.Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert sale")
		}

		for _, item := range sale.Items {
			weight := item.Weight()
			if err := txProducts.AdjustStock(ctx, item.ProductID, weight.Neg()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: decrement stock")
			}
			entry := &models.StockLog{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Change:      weight.Neg(),
				Date:        now,
				Reason:      fmt.Sprintf("Sale #%s", sale.InvoiceNumber),
			}
			if err := txProducts.AppendStockLog(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: append stock log")
			}
		}

		created = sale
		return nil
	}); err != nil {
		return nil, err
	}

	return NewSaleDTO(created), nil
}

func (s *service) ListSales(ctx context.Context, filters ListFilters) ([]SaleDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list sales")
	}
	return NewSaleDTOs(rows), nil
}

func (s *service) Summary(ctx context.Context, salesmanID string) (*SummaryDTO, error) {
	salesmanID = strings.ToUpper(strings.TrimSpace(salesmanID))
	totals, err := s.repo.Totals(ctx, salesmanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: salesman totals")
	}
	pending, err := s.repo.CountPending(ctx, salesmanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: pending count")
	}
	return &SummaryDTO{
		SalesmanID:  salesmanID,
		TotalSales:  totals.Total,
		BillCount:   totals.Bills,
		PendingSync: pending,
	}, nil
}
