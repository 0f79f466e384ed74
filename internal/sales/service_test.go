package sales

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/internal/products"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupSalesTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		products.NewRepository(conn),
		customers.NewRepository(conn),
		db.NewWithConn(conn),
	)
	require.NoError(t, err)
	return svc, conn
}

func TestFinalizeSaleHappyPath(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 50)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	sale, err := svc.FinalizeSale(ctx, FinalizeSaleInput{
		CustomerCode: customer.Code,
		SalesmanID:   "a",
		Items: []CartItem{
			{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 3},
			{ProductID: product.ID, Pack: enums.PackTypeHalf, Quantity: 2},
		},
		Discount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	assert.Equal(t, "10001", sale.InvoiceNumber)
	assert.Equal(t, "A", sale.SalesmanID)
	assert.Equal(t, "Ravi Kumar", sale.CustomerName)
	assert.False(t, sale.Synced)
	assert.True(t, strings.HasPrefix(sale.SyncID, "A_10001_"), "unexpected sync id %s", sale.SyncID)

	// 3x100 + 2x55 = 410, minus 10 discount.
	assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(410)))
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(400)))

	// 3kg from the 1kg lines plus 1kg from the two half-kg lines.
	assert.True(t, stockLevel(t, conn, product.ID).Equal(decimal.NewFromInt(46)),
		"expected stock 46, got %s", stockLevel(t, conn, product.ID))

	var logs []models.StockLog
	require.NoError(t, conn.Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "Sale #10001", entry.Reason)
		assert.True(t, entry.Change.IsNegative())
	}
}

func TestFinalizeSaleDiscountClamp(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 50)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	sale, err := svc.FinalizeSale(ctx, FinalizeSaleInput{
		CustomerCode: customer.Code,
		SalesmanID:   "A",
		Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 1}},
		Discount:     decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.IsZero(), "discount beyond subtotal must clamp to zero")
}

func TestFinalizeSaleInvoiceMonotonicity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 500)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	input := FinalizeSaleInput{
		CustomerCode: customer.Code,
		SalesmanID:   "A",
		Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 1}},
		Discount:     decimal.Zero,
	}

	first, err := svc.FinalizeSale(ctx, input)
	require.NoError(t, err)
	second, err := svc.FinalizeSale(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "10001", first.InvoiceNumber)
	assert.Equal(t, "10002", second.InvoiceNumber)

	// Inject an imported sale with a higher number for the same salesman:
	// numbering must jump past it rather than reuse the gap.
	imported := &models.Sale{
		InvoiceNumber: "10500",
		CustomerCode:  customer.Code,
		CustomerName:  customer.Name,
		SalesmanID:    "A",
		Date:          first.Date,
		Subtotal:      decimal.NewFromInt(100),
		TotalAmount:   decimal.NewFromInt(100),
		Synced:        true,
		SyncID:        "A_10500_1",
	}
	require.NoError(t, conn.Create(imported).Error)

	third, err := svc.FinalizeSale(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "10501", third.InvoiceNumber)
}

func TestFinalizeSaleValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 50)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	cases := []struct {
		name  string
		input FinalizeSaleInput
	}{
		{"noCustomer", FinalizeSaleInput{
			SalesmanID: "A",
			Items:      []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 1}},
		}},
		{"emptyCart", FinalizeSaleInput{
			CustomerCode: customer.Code,
			SalesmanID:   "A",
		}},
		{"zeroQuantity", FinalizeSaleInput{
			CustomerCode: customer.Code,
			SalesmanID:   "A",
			Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 0}},
		}},
		{"badSalesman", FinalizeSaleInput{
			CustomerCode: customer.Code,
			SalesmanID:   "9",
			Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 1}},
		}},
		{"negativeDiscount", FinalizeSaleInput{
			CustomerCode: customer.Code,
			SalesmanID:   "A",
			Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 1}},
			Discount:     decimal.NewFromInt(-5),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FinalizeSale(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}

	// No validation failure may leave a partial sale behind.
	assert.Zero(t, saleCount(t, conn))
	assert.True(t, stockLevel(t, conn, product.ID).Equal(decimal.NewFromInt(50)))
}

func TestFinalizeSaleRollsBackOnStorageFault(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 50)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	// Fault injection: the audit table vanishes after the sale insert and
	// stock decrement succeed, forcing a failure mid-transaction.
	require.NoError(t, conn.Exec("DROP TABLE stock_logs").Error)

	_, err := svc.FinalizeSale(ctx, FinalizeSaleInput{
		CustomerCode: customer.Code,
		SalesmanID:   "A",
		Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 2}},
		Discount:     decimal.Zero,
	})
	require.Error(t, err)

	// Neither the sale nor the stock change may survive.
	assert.Zero(t, saleCount(t, conn))
	assert.True(t, stockLevel(t, conn, product.ID).Equal(decimal.NewFromInt(50)),
		"stock must be restored by rollback, got %s", stockLevel(t, conn, product.ID))
}

func TestSummary(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	product := seedProduct(t, conn, "Basmati", 500)
	customer := seedCustomer(t, conn, "Ravi Kumar", "ravikumar_9876543210")

	input := FinalizeSaleInput{
		CustomerCode: customer.Code,
		SalesmanID:   "A",
		Items:        []CartItem{{ProductID: product.ID, Pack: enums.PackType1Kg, Quantity: 2}},
		Discount:     decimal.Zero,
	}
	_, err := svc.FinalizeSale(ctx, input)
	require.NoError(t, err)
	_, err = svc.FinalizeSale(ctx, input)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", summary.SalesmanID)
	assert.Equal(t, int64(2), summary.BillCount)
	assert.Equal(t, int64(2), summary.PendingSync)
	assert.True(t, summary.TotalSales.Equal(decimal.NewFromInt(400)))
}
