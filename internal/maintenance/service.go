package maintenance

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/config"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// Service is the operator escape hatch: raw table inspection and purge,
// both gated by the maintenance key.
type Service interface {
	Unlock(key string) error
	InspectTable(ctx context.Context, key string, table enums.Table) (*TableDumpDTO, error)
	PurgeTable(ctx context.Context, key string, table enums.Table) (*PurgeResultDTO, error)
	DatabaseSize(ctx context.Context) (int64, error)
}

// TableDumpDTO is a raw view of one collection.
type TableDumpDTO struct {
	Table enums.Table       `json:"table"`
	Count int               `json:"count"`
	Rows  []json.RawMessage `json:"rows"`
}

// PurgeResultDTO reports how many rows a purge removed.
type PurgeResultDTO struct {
	Table   enums.Table `json:"table"`
	Removed int64       `json:"removed"`
}

type service struct {
	db       *gorm.DB
	dbClient *db.Client
	key      string
}

// NewService constructs the maintenance service.
func NewService(conn *gorm.DB, dbClient *db.Client, security config.SecurityConfig) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if security.MaintenanceKey == "" {
		return nil, fmt.Errorf("maintenance key required")
	}
	return &service{db: conn, dbClient: dbClient, key: security.MaintenanceKey}, nil
}

// Unlock verifies the maintenance key without performing any action.
func (s *service) Unlock(key string) error {
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.key)) != 1 {
		return pkgerrors.New(pkgerrors.CodeForbidden, "maintenance key mismatch")
	}
	return nil
}

func (s *service) InspectTable(ctx context.Context, key string, table enums.Table) (*TableDumpDTO, error) {
	if err := s.Unlock(key); err != nil {
		return nil, err
	}
	if !table.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown table %q", table))
	}

	rows, err := s.dumpRows(ctx, table)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: dump table")
	}
	return &TableDumpDTO{Table: table, Count: len(rows), Rows: rows}, nil
}

// PurgeTable clears one collection. The only path in the system that is
// allowed to delete stock log history.
func (s *service) PurgeTable(ctx context.Context, key string, table enums.Table) (*PurgeResultDTO, error) {
	if err := s.Unlock(key); err != nil {
		return nil, err
	}
	if !table.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown table %q", table))
	}

	result := &PurgeResultDTO{Table: table}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var res *gorm.DB
		switch table {
		case enums.TableProducts:
			res = tx.Where("1 = 1").Delete(&models.Product{})
		case enums.TableCustomers:
			res = tx.Where("1 = 1").Delete(&models.Customer{})
		case enums.TableSales:
			if err := tx.Where("1 = 1").Delete(&models.SaleItem{}).Error; err != nil {
				return err
			}
			res = tx.Where("1 = 1").Delete(&models.Sale{})
		case enums.TableStockLogs:
			res = tx.Where("1 = 1").Delete(&models.StockLog{})
		}
		if res.Error != nil {
			return res.Error
		}
		result.Removed = res.RowsAffected
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: purge table")
	}
	return result, nil
}

// DatabaseSize reports the sqlite file footprint shown on the settings page.
func (s *service) DatabaseSize(ctx context.Context) (int64, error) {
	size, err := s.dbClient.SizeBytes(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: size")
	}
	return size, nil
}

func (s *service) dumpRows(ctx context.Context, table enums.Table) ([]json.RawMessage, error) {
	marshal := func(v any) (json.RawMessage, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}

	out := []json.RawMessage{}
	switch table {
	case enums.TableProducts:
		var rows []models.Product
		if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			raw, err := marshal(rows[i])
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
	case enums.TableCustomers:
		var rows []models.Customer
		if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			raw, err := marshal(rows[i])
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
	case enums.TableSales:
		var rows []models.Sale
		if err := s.db.WithContext(ctx).Preload("Items").Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			raw, err := marshal(rows[i])
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
	case enums.TableStockLogs:
		var rows []models.StockLog
		if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			raw, err := marshal(rows[i])
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
	}
	return out, nil
}
