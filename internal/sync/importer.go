package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/metrics"
)

// MasterImportMode selects what a master snapshot import replaces.
type MasterImportMode string

const (
	// MasterImportFullRestore clears all four tables and loads the
	// snapshot wholesale. Disaster recovery and device cloning.
	MasterImportFullRestore MasterImportMode = "full_restore"
	// MasterImportCatalogRefresh replaces products and upserts customers
	// while keeping the device's own sales and stock logs. Used on
	// salesman terminals to pick up the manager's latest master data.
	MasterImportCatalogRefresh MasterImportMode = "catalog_refresh"
)

// ImportKind reports which payload shape an import resolved to.
type ImportKind string

const (
	ImportKindMaster ImportKind = "master_snapshot"
	ImportKindDelta  ImportKind = "sales_delta"
)

// ImportOptions carries the operator's choices for one import run.
type ImportOptions struct {
	// Confirmed acknowledges a destructive master-snapshot import. The
	// confirmation happens before the transaction starts; there is no
	// mid-import cancellation.
	Confirmed bool
	Mode      MasterImportMode
}

// ImportResult is the operator-facing outcome: with no other confirmation
// channel between devices, these counters are the observability surface.
type ImportResult struct {
	Kind             ImportKind `json:"kind"`
	Imported         int        `json:"imported"`
	Skipped          int        `json:"skipped"`
	StockAdjustments int        `json:"stock_adjustments"`
	Warnings         []string   `json:"warnings,omitempty"`
}

// AddressFieldRegistered marks customers auto-created from an imported
// sale rather than registered explicitly.
const AddressFieldRegistered = "Field Registration"

// Import parses the payload, dispatches on its shape, and merges it into
// the local store inside a single transaction. Unrecognized shapes and
// broken JSON fail before any write happens.
func (s *service) Import(ctx context.Context, raw []byte, opts ImportOptions) (*ImportResult, error) {
	started := s.now()

	var probe struct {
		Version    string          `json:"version"`
		SalesmanID string          `json:"salesmanId"`
		Sales      json.RawMessage `json:"sales"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		s.metrics.IncFailure(metrics.OpImport)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "payload is not valid JSON")
	}

	var (
		result *ImportResult
		err    error
	)
	switch {
	case probe.Version == MasterVersion:
		result, err = s.importMaster(ctx, raw, opts)
	case probe.SalesmanID != "" && probe.Sales != nil:
		result, err = s.importDelta(ctx, raw)
	default:
		err = pkgerrors.New(pkgerrors.CodeInvalidFormat,
			"payload matches neither a master snapshot nor a sales delta")
	}
	if err != nil {
		s.metrics.IncFailure(metrics.OpImport)
		return nil, err
	}

	s.metrics.ObserveDuration(metrics.OpImport, s.now().Sub(started))
	s.metrics.AddSales(metrics.OutcomeImported, result.Imported)
	s.metrics.AddSales(metrics.OutcomeSkipped, result.Skipped)
	s.metrics.AddStockAdjustments(result.StockAdjustments)
	return result, nil
}

func (s *service) importMaster(ctx context.Context, raw []byte, opts ImportOptions) (*ImportResult, error) {
	if !opts.Confirmed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"master snapshot import is destructive and requires confirmation")
	}
	mode := opts.Mode
	if mode == "" {
		mode = MasterImportFullRestore
	}
	if mode != MasterImportFullRestore && mode != MasterImportCatalogRefresh {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown master import mode %q", mode))
	}

	var payload MasterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "malformed master snapshot")
	}

	// Absent arrays degrade to empty: a partially correct file is still
	// worth salvaging, the operator just gets told what was missing.
	var warnings []string
	for _, missing := range missingMasterSections(raw) {
		warnings = append(warnings, fmt.Sprintf("snapshot has no %q section, treating as empty", missing))
	}

	result := &ImportResult{Kind: ImportKindMaster, Warnings: warnings}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := txRepo.ClearProducts(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear products")
		}
		productRows := make([]models.Product, 0, len(payload.Products))
		for _, p := range payload.Products {
			productRows = append(productRows, p.toModel())
		}
		if err := txRepo.InsertProducts(ctx, productRows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert products")
		}
		result.Imported += len(productRows)

		switch mode {
		case MasterImportFullRestore:
			if err := txRepo.ClearCustomers(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear customers")
			}
			customerRows := make([]models.Customer, 0, len(payload.Customers))
			for _, c := range payload.Customers {
				customerRows = append(customerRows, models.Customer{
					ID:      c.ID,
					Code:    c.Code,
					Name:    c.Name,
					Address: c.Address,
					Mobile:  c.Mobile,
				})
			}
			if err := txRepo.InsertCustomers(ctx, customerRows); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert customers")
			}
			result.Imported += len(customerRows)

			if err := txRepo.ClearSales(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear sales")
			}
			saleRows := make([]models.Sale, 0, len(payload.Sales))
			for i := range payload.Sales {
				sale := payloadToSale(&payload.Sales[i], payload.Sales[i].SalesmanID)
				if strings.TrimSpace(sale.SyncID) == "" {
					sale.SyncID = fmt.Sprintf("%s_%s_%d", sale.SalesmanID, sale.InvoiceNumber, sale.Date.UnixMilli())
				}
				saleRows = append(saleRows, sale)
			}
			if err := txRepo.InsertSales(ctx, saleRows); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert sales")
			}
			result.Imported += len(saleRows)

			if err := txRepo.ClearStockLogs(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear stock logs")
			}
			logRows := make([]models.StockLog, 0, len(payload.StockLogs))
			for _, entry := range payload.StockLogs {
				logRows = append(logRows, models.StockLog{
					ProductID:   entry.ProductID,
					ProductName: entry.ProductName,
					Change:      entry.Change,
					Date:        entry.Date,
					Reason:      entry.Reason,
				})
			}
			if err := txRepo.InsertStockLogs(ctx, logRows); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert stock logs")
			}
			result.Imported += len(logRows)

		case MasterImportCatalogRefresh:
			// The terminal keeps its own sales and audit trail; only the
			// master data moves.
			for _, c := range payload.Customers {
				if err := txRepo.UpsertCustomerByCode(ctx, models.Customer{
					Code:    c.Code,
					Name:    c.Name,
					Address: c.Address,
					Mobile:  c.Mobile,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: upsert customer")
				}
			}
			result.Imported += len(payload.Customers)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, fmt.Sprintf("master import (%s) applied %d records", mode, result.Imported))
	return result, nil
}

func (s *service) importDelta(ctx context.Context, raw []byte) (*ImportResult, error) {
	var payload DeltaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidFormat, err, "malformed sales delta")
	}

	salesmanID := strings.ToUpper(strings.TrimSpace(payload.SalesmanID))
	if salesmanID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidFormat, "delta payload has no salesman id")
	}

	result := &ImportResult{Kind: ImportKindDelta}
	var lineIssues error

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txSales := s.salesRepo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)
		txCustomers := s.customerRepo.WithTx(tx)

		for i := range payload.Sales {
			incoming := &payload.Sales[i]

			syncID := strings.TrimSpace(incoming.SyncID)
			if syncID == "" {
				syncID = fmt.Sprintf("%s_%s_%d", salesmanID, incoming.InvoiceNumber, incoming.Date.UnixMilli())
			}

			exists, err := txSales.ExistsBySyncID(ctx, syncID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: dedup lookup")
			}
			if exists {
				result.Skipped++
				continue
			}

			sale := payloadToSale(incoming, salesmanID)
			sale.SyncID = syncID
			sale.Synced = true
			if _, err := txSales.Create(ctx, &sale); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert imported sale")
			}
			result.Imported++

			for _, item := range sale.Items {
				product, err := txProducts.FindByID(ctx, item.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						// Inventory mismatches across devices are expected;
						// the sale still lands, only the adjustment is lost.
						lineIssues = multierr.Append(lineIssues, fmt.Errorf(
							"invoice %s: product %d not found, stock not adjusted",
							sale.InvoiceNumber, item.ProductID))
						continue
					}
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load product")
				}
				weight := item.Weight()
				if err := txProducts.AdjustStock(ctx, product.ID, weight.Neg()); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: decrement stock")
				}
				entry := &models.StockLog{
					ProductID:   product.ID,
					ProductName: product.Name,
					Change:      weight.Neg(),
					Date:        sale.Date,
					Reason:      fmt.Sprintf("Sync Import #%s", sale.InvoiceNumber),
				}
				if err := txProducts.AppendStockLog(ctx, entry); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: append stock log")
				}
				result.StockAdjustments++
			}

			if err := s.ensureCustomer(ctx, txCustomers, &sale); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for _, issue := range multierr.Errors(lineIssues) {
		result.Warnings = append(result.Warnings, issue.Error())
	}

	logCtx := s.logger.WithSalesmanID(ctx, salesmanID)
	s.logger.Info(logCtx, fmt.Sprintf("delta import: %d imported, %d skipped, %d stock adjustments",
		result.Imported, result.Skipped, result.StockAdjustments))
	return result, nil
}

// ensureCustomer auto-creates a minimal customer record when a sale refers
// to a code this device has never seen, so admin views can always resolve a
// sale's buyer even if the registration never arrived by another route.
func (s *service) ensureCustomer(ctx context.Context, repo *customers.Repository, sale *models.Sale) error {
	if strings.TrimSpace(sale.CustomerCode) == "" {
		return nil
	}
	_, err := repo.FindByCode(ctx, sale.CustomerCode)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load customer")
	}

	customer := &models.Customer{
		Code:    sale.CustomerCode,
		Name:    sale.CustomerName,
		Address: AddressFieldRegistered,
		Mobile:  customers.MobileFromCode(sale.CustomerCode),
	}
	if _, err := repo.Create(ctx, customer); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: auto-create customer")
	}
	return nil
}

func payloadToSale(incoming *SalePayload, salesmanID string) models.Sale {
	items := make([]models.SaleItem, 0, len(incoming.Items))
	for _, item := range incoming.Items {
		pack, err := enums.ParsePackType(item.Pack)
		if err != nil {
			pack = enums.PackType1Kg
		}
		items = append(items, models.SaleItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Pack:        pack,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	// The incoming local id is meaningless here, the receiving store
	// assigns its own.
	return models.Sale{
		Items:         items,
		InvoiceNumber: incoming.InvoiceNumber,
		CustomerCode:  incoming.CustomerCode,
		CustomerName:  incoming.CustomerName,
		SalesmanID:    salesmanID,
		Date:          incoming.Date,
		Subtotal:      incoming.Subtotal,
		Discount:      incoming.Discount,
		TotalAmount:   incoming.TotalAmount,
		Synced:        incoming.Synced,
		SyncID:        incoming.SyncID,
	}
}

func missingMasterSections(raw []byte) []string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil
	}
	var missing []string
	for _, section := range []string{"products", "customers", "sales", "stockLogs"} {
		if _, ok := keys[section]; !ok {
			missing = append(missing, section)
		}
	}
	return missing
}
