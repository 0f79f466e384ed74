package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/internal/products"
	"github.com/avstore/avpos-backend/internal/sales"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// recordSale finalizes one sale through the real recording engine so the
// export path reads genuine unsynced rows.
func recordSale(t *testing.T, conn *gorm.DB, salesmanID, customerCode string, productID uint, qty int) *sales.SaleDTO {
	t.Helper()
	svc, err := sales.NewService(
		sales.NewRepository(conn),
		products.NewRepository(conn),
		customers.NewRepository(conn),
		db.NewWithConn(conn),
	)
	require.NoError(t, err)
	sale, err := svc.FinalizeSale(context.Background(), sales.FinalizeSaleInput{
		CustomerCode: customerCode,
		SalesmanID:   salesmanID,
		Items:        []sales.CartItem{{ProductID: productID, Pack: enums.PackType1Kg, Quantity: qty}},
		Discount:     decimal.Zero,
	})
	require.NoError(t, err)
	return sale
}

func TestDeviceToDeviceScenario(t *testing.T) {
	ctx := context.Background()

	// Device A: salesman terminal records one sale of 5kg at 100/kg.
	deviceA := setupSyncTestDB(t)
	productA := seedProduct(t, deviceA, 1, "Basmati", 50)
	customerA := seedCustomer(t, deviceA, "Ravi Kumar", "ravikumar_9876543210")
	sale := recordSale(t, deviceA, "A", customerA.Code, productA.ID, 5)
	assert.Equal(t, "10001", sale.InvoiceNumber)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(500)))

	engineA := newTestEngine(t, deviceA)
	file, err := engineA.ExportDelta(ctx, "A")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.FileName, "SYNC_A_"), "unexpected file name %s", file.FileName)
	assert.Equal(t, 1, file.Sales)

	// The export flips the synced flag on device A.
	var unsyncedLeft int64
	require.NoError(t, deviceA.Model(&models.Sale{}).Where("synced = ?", false).Count(&unsyncedLeft).Error)
	assert.Zero(t, unsyncedLeft)

	// Device B: admin station with the same product under the same id.
	deviceB := setupSyncTestDB(t)
	productB := seedProduct(t, deviceB, 1, "Basmati", 80)
	engineB := newTestEngine(t, deviceB)

	result, err := engineB.Import(ctx, file.Body, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, ImportKindDelta, result.Kind)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.StockAdjustments)

	assert.True(t, stockLevel(t, deviceB, productB.ID).Equal(decimal.NewFromInt(75)),
		"expected stock 75, got %s", stockLevel(t, deviceB, productB.ID))

	var logs []models.StockLog
	require.NoError(t, deviceB.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "Sync Import #10001", logs[0].Reason)

	// The buyer is auto-created on the admin side with a sentinel address.
	var buyer models.Customer
	require.NoError(t, deviceB.First(&buyer, "code = ?", customerA.Code).Error)
	assert.Equal(t, AddressFieldRegistered, buyer.Address)
	assert.Equal(t, "9876543210", buyer.Mobile)

	// The imported sale is already reconciled from device B's view.
	var imported models.Sale
	require.NoError(t, deviceB.Preload("Items").First(&imported, "sync_id = ?", sale.SyncID).Error)
	assert.True(t, imported.Synced)
	require.Len(t, imported.Items, 1)

	// Re-import of the same file must be a complete no-op.
	again, err := engineB.Import(ctx, file.Body, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 1, again.Skipped)
	assert.Equal(t, 0, again.StockAdjustments)
	assert.True(t, stockLevel(t, deviceB, productB.ID).Equal(decimal.NewFromInt(75)))
	assert.Equal(t, int64(1), countRows(t, deviceB, &models.Sale{}))
	assert.Equal(t, int64(1), countRows(t, deviceB, &models.Customer{}))
}

func TestExportDeltaNothingToExport(t *testing.T) {
	conn := setupSyncTestDB(t)
	engine := newTestEngine(t, conn)

	_, err := engine.ExportDelta(context.Background(), "A")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNothingToDo, typed.Code())
}

func TestImportRejectsMalformedPayloads(t *testing.T) {
	conn := setupSyncTestDB(t)
	engine := newTestEngine(t, conn)
	ctx := context.Background()

	for _, raw := range []string{
		"{not json",
		`{"foo": "bar"}`,
		`{"sales": []}`,
	} {
		_, err := engine.Import(ctx, []byte(raw), ImportOptions{})
		require.Error(t, err, "payload %q must be rejected", raw)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInvalidFormat, typed.Code())
	}

	assert.Zero(t, countRows(t, conn, &models.Sale{}))
	assert.Zero(t, countRows(t, conn, &models.Customer{}))
}

func TestImportSynthesizesDedupKey(t *testing.T) {
	conn := setupSyncTestDB(t)
	seedProduct(t, conn, 1, "Basmati", 50)
	engine := newTestEngine(t, conn)
	ctx := context.Background()

	date := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	payload := DeltaPayload{
		SalesmanID: "B",
		Timestamp:  date,
		Sales: []SalePayload{{
			InvoiceNumber: "20001",
			CustomerCode:  "anita_9123456789",
			CustomerName:  "Anita Shah",
			SalesmanID:    "B",
			Date:          date,
			Items: []SaleItemPayload{{
				ProductID: 1, ProductName: "Basmati", Pack: "1kg",
				Quantity: 2, Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(200),
			}},
			Subtotal:    decimal.NewFromInt(200),
			TotalAmount: decimal.NewFromInt(200),
		}},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	first, err := engine.Import(ctx, raw, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)

	var stored models.Sale
	require.NoError(t, conn.First(&stored, "salesman_id = ?", "B").Error)
	assert.Equal(t, fmt.Sprintf("B_20001_%d", date.UnixMilli()), stored.SyncID)

	// Synthesis is deterministic, so the second pass dedups.
	second, err := engine.Import(ctx, raw, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Skipped)
}

func TestImportUnknownProductIsNonFatal(t *testing.T) {
	conn := setupSyncTestDB(t)
	engine := newTestEngine(t, conn)
	ctx := context.Background()

	date := time.Now().UTC().Truncate(time.Second)
	payload := DeltaPayload{
		SalesmanID: "C",
		Timestamp:  date,
		Sales: []SalePayload{{
			InvoiceNumber: "30001",
			CustomerCode:  "ghost_1112223334",
			CustomerName:  "Ghost Buyer",
			SalesmanID:    "C",
			Date:          date,
			SyncID:        "C_30001_1",
			Items: []SaleItemPayload{{
				ProductID: 99, ProductName: "Vanished", Pack: "0.5kg",
				Quantity: 4, Price: decimal.NewFromInt(55), Total: decimal.NewFromInt(220),
			}},
			Subtotal:    decimal.NewFromInt(220),
			TotalAmount: decimal.NewFromInt(220),
		}},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	result, err := engine.Import(ctx, raw, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.StockAdjustments)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "product 99")

	// The sale itself still landed.
	assert.Equal(t, int64(1), countRows(t, conn, &models.Sale{}))
	assert.Zero(t, countRows(t, conn, &models.StockLog{}))
}

func TestMasterImportRequiresConfirmation(t *testing.T) {
	conn := setupSyncTestDB(t)
	engine := newTestEngine(t, conn)

	raw := []byte(`{"version":"2.0-AV","products":[],"customers":[],"sales":[],"stockLogs":[],"timestamp":"2026-01-01T00:00:00Z"}`)
	_, err := engine.Import(context.Background(), raw, ImportOptions{Confirmed: false})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMasterFullRestoreReplacesEverything(t *testing.T) {
	ctx := context.Background()

	// Source device with real data.
	source := setupSyncTestDB(t)
	product := seedProduct(t, source, 1, "Basmati", 40)
	customer := seedCustomer(t, source, "Ravi Kumar", "ravikumar_9876543210")
	recordSale(t, source, "A", customer.Code, product.ID, 2)
	file, err := newTestEngine(t, source).ExportMaster(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.FileName, "AV_MASTER_CLONE_"))

	// Target device full of junk that must vanish.
	target := setupSyncTestDB(t)
	seedProduct(t, target, 7, "Stale", 999)
	seedCustomer(t, target, "Old Customer", "old_1")
	engine := newTestEngine(t, target)

	result, err := engine.Import(ctx, file.Body, ImportOptions{Confirmed: true, Mode: MasterImportFullRestore})
	require.NoError(t, err)
	assert.Equal(t, ImportKindMaster, result.Kind)

	var restored models.Product
	require.NoError(t, target.First(&restored, "id = ?", product.ID).Error)
	assert.Equal(t, "Basmati", restored.Name)
	assert.True(t, restored.StockLevel.Equal(decimal.NewFromInt(38)), "snapshot stock carried over")

	assert.Equal(t, int64(1), countRows(t, target, &models.Product{}))
	assert.Equal(t, int64(1), countRows(t, target, &models.Customer{}))
	assert.Equal(t, int64(1), countRows(t, target, &models.Sale{}))
	assert.Equal(t, int64(1), countRows(t, target, &models.StockLog{}))
}

func TestCatalogRefreshPreservesLocalSales(t *testing.T) {
	ctx := context.Background()

	// Manager station is the snapshot source.
	manager := setupSyncTestDB(t)
	seedProduct(t, manager, 1, "Basmati", 200)
	seedProduct(t, manager, 2, "Sona Masoori", 150)
	seedCustomer(t, manager, "Ravi Kumar", "ravikumar_9876543210")
	file, err := newTestEngine(t, manager).ExportMaster(ctx)
	require.NoError(t, err)

	// Salesman terminal has an outdated catalog and one unsynced sale.
	terminal := setupSyncTestDB(t)
	oldProduct := seedProduct(t, terminal, 1, "Basmati (old price)", 10)
	localCustomer := seedCustomer(t, terminal, "Local Buyer", "localbuyer_9000000000")
	localSale := recordSale(t, terminal, "B", localCustomer.Code, oldProduct.ID, 1)

	engine := newTestEngine(t, terminal)
	_, err = engine.Import(ctx, file.Body, ImportOptions{Confirmed: true, Mode: MasterImportCatalogRefresh})
	require.NoError(t, err)

	// Catalog fully replaced.
	assert.Equal(t, int64(2), countRows(t, terminal, &models.Product{}))
	var refreshed models.Product
	require.NoError(t, terminal.First(&refreshed, "id = ?", 1).Error)
	assert.Equal(t, "Basmati", refreshed.Name)

	// Customers upserted, local ones kept.
	assert.Equal(t, int64(2), countRows(t, terminal, &models.Customer{}))

	// The terminal's own pending sale and audit trail survive.
	var kept models.Sale
	require.NoError(t, terminal.First(&kept, "sync_id = ?", localSale.SyncID).Error)
	assert.False(t, kept.Synced)
	assert.Equal(t, int64(1), countRows(t, terminal, &models.StockLog{}))
}

func TestMasterImportWarnsOnMissingSections(t *testing.T) {
	conn := setupSyncTestDB(t)
	engine := newTestEngine(t, conn)

	raw := []byte(`{"version":"2.0-AV","products":[{"id":1,"name":"Basmati","price1kg":100,"price05kg":55,"stockLevel":20,"isDeleted":0}],"timestamp":"2026-01-01T00:00:00Z"}`)
	result, err := engine.Import(context.Background(), raw, ImportOptions{Confirmed: true, Mode: MasterImportFullRestore})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countRows(t, conn, &models.Product{}))
	require.NotEmpty(t, result.Warnings)
	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "customers")
	assert.Contains(t, joined, "sales")
	assert.Contains(t, joined, "stockLogs")
}
