package products

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single pooled connection keeps the private in-memory database alive
	// for the whole test, matching the one-writer production setup.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  price_1kg NUMERIC NOT NULL DEFAULT 0,
  price_05kg NUMERIC NOT NULL DEFAULT 0,
  stock_level NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	stockLogs := `
CREATE TABLE IF NOT EXISTS stock_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  change NUMERIC NOT NULL,
  date DATETIME NOT NULL,
  reason TEXT NOT NULL
);`
	require.NoError(t, conn.Exec(products).Error)
	require.NoError(t, conn.Exec(stockLogs).Error)
	return conn
}
