package sync

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/internal/products"
	"github.com/avstore/avpos-backend/internal/sales"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	"github.com/avstore/avpos-backend/pkg/logger"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  price_1kg NUMERIC NOT NULL DEFAULT 0,
  price_05kg NUMERIC NOT NULL DEFAULT 0,
  stock_level NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT,
  mobile TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_code ON customers (code);`, `
CREATE TABLE IF NOT EXISTS sales (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  invoice_number TEXT NOT NULL,
  customer_code TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  salesman_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  synced INTEGER NOT NULL DEFAULT 0,
  sync_id TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_sync_id ON sales (sync_id);`, `
CREATE TABLE IF NOT EXISTS sale_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sale_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  pack TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  total NUMERIC NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS stock_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  change NUMERIC NOT NULL,
  date DATETIME NOT NULL,
  reason TEXT NOT NULL
);`}
	for _, stmt := range stmts {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestEngine(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.Disabled})
	svc, err := NewService(
		NewRepository(conn),
		sales.NewRepository(conn),
		products.NewRepository(conn),
		customers.NewRepository(conn),
		db.NewWithConn(conn),
		logg,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, id uint, name string, stock int64) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         id,
		Name:       name,
		Price1Kg:   decimal.NewFromInt(100),
		PriceHalf:  decimal.NewFromInt(55),
		StockLevel: decimal.NewFromInt(stock),
		Status:     enums.ProductStatusActive,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedCustomer(t *testing.T, conn *gorm.DB, name, code string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Code: code, Name: name, Mobile: "9876543210"}
	require.NoError(t, conn.Create(customer).Error)
	return customer
}

func stockLevel(t *testing.T, conn *gorm.DB, productID uint) decimal.Decimal {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	return product.StockLevel
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(model).Count(&count).Error)
	return count
}
