package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avstore/avpos-backend/internal/invoice"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/metrics"
)

// ExportFile is a rendered sync file ready to hand to the operator.
type ExportFile struct {
	FileName string          `json:"file_name"`
	Body     json.RawMessage `json:"body"`
	Sales    int             `json:"sales"`
}

// ExportDelta packages the salesman's unsynced sales and marks them synced
// once the payload bytes exist. The flip does not wait for delivery
// confirmation: the file travels by hand and there is no ack channel, an
// accepted trade-off carried over from how these terminals operate.
func (s *service) ExportDelta(ctx context.Context, salesmanID string) (*ExportFile, error) {
	started := s.now()
	salesmanID = strings.ToUpper(strings.TrimSpace(salesmanID))
	if _, err := invoice.Base(salesmanID); err != nil {
		return nil, err
	}

	pending, err := s.salesRepo.ListUnsynced(ctx, salesmanID)
	if err != nil {
		s.metrics.IncFailure(metrics.OpExportDelta)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list unsynced sales")
	}
	if len(pending) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNothingToDo, "no unsynced sales to export")
	}

	payload := DeltaPayload{
		SalesmanID: salesmanID,
		Sales:      make([]SalePayload, 0, len(pending)),
		Timestamp:  s.now().UTC(),
	}
	ids := make([]uint, 0, len(pending))
	for i := range pending {
		payload.Sales = append(payload.Sales, newSalePayload(&pending[i]))
		ids = append(ids, pending[i].ID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.metrics.IncFailure(metrics.OpExportDelta)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal delta payload")
	}

	if err := s.salesRepo.MarkSynced(ctx, ids); err != nil {
		s.metrics.IncFailure(metrics.OpExportDelta)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: mark sales synced")
	}

	s.logger.Info(s.logger.WithSalesmanID(ctx, salesmanID),
		fmt.Sprintf("exported %d sales", len(ids)))
	s.metrics.ObserveDuration(metrics.OpExportDelta, s.now().Sub(started))
	s.metrics.AddSales(metrics.OutcomeExported, len(ids))

	return &ExportFile{
		FileName: deltaFileName(salesmanID, s.now()),
		Body:     body,
		Sales:    len(ids),
	}, nil
}

// ExportMaster renders the full-database snapshot used for disaster
// recovery and for seeding new salesman terminals.
func (s *service) ExportMaster(ctx context.Context) (*ExportFile, error) {
	started := s.now()

	products, customers, allSales, stockLogs, err := s.repo.SnapshotAll(ctx)
	if err != nil {
		s.metrics.IncFailure(metrics.OpExportMaster)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: snapshot tables")
	}

	payload := MasterPayload{
		Products:  make([]ProductPayload, 0, len(products)),
		Customers: make([]CustomerPayload, 0, len(customers)),
		Sales:     make([]SalePayload, 0, len(allSales)),
		StockLogs: make([]StockLogPayload, 0, len(stockLogs)),
		Timestamp: s.now().UTC(),
		Version:   MasterVersion,
	}
	for i := range products {
		payload.Products = append(payload.Products, newProductPayload(&products[i]))
	}
	for i := range customers {
		payload.Customers = append(payload.Customers, newCustomerPayload(&customers[i]))
	}
	for i := range allSales {
		payload.Sales = append(payload.Sales, newSalePayload(&allSales[i]))
	}
	for i := range stockLogs {
		payload.StockLogs = append(payload.StockLogs, newStockLogPayload(&stockLogs[i]))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.metrics.IncFailure(metrics.OpExportMaster)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal master payload")
	}

	s.metrics.ObserveDuration(metrics.OpExportMaster, s.now().Sub(started))

	return &ExportFile{
		FileName: masterFileName(s.now()),
		Body:     body,
		Sales:    len(allSales),
	}, nil
}

func deltaFileName(salesmanID string, now time.Time) string {
	return fmt.Sprintf("SYNC_%s_%s.json", salesmanID, now.Format("2006-01-02"))
}

func masterFileName(now time.Time) string {
	return fmt.Sprintf("AV_MASTER_CLONE_%s.json", now.UTC().Format("2006-01-02"))
}
