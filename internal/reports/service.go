package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// Service aggregates the dashboard views computed over local data only.
type Service interface {
	Overview(ctx context.Context) (*OverviewDTO, error)
}

// OverviewDTO is the admin dashboard aggregate.
type OverviewDTO struct {
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TotalKgSold  decimal.Decimal      `json:"total_kg_sold"`
	BillCount    int64                `json:"bill_count"`
	Last7Days    []DailyRevenueDTO    `json:"last_7_days"`
	Salesmen     []SalesmanSummaryDTO `json:"salesmen"`
}

// DailyRevenueDTO is one step of the trailing revenue series.
type DailyRevenueDTO struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Bills   int64           `json:"bills"`
}

// SalesmanSummaryDTO is the per-terminal rollup.
type SalesmanSummaryDTO struct {
	SalesmanID  string          `json:"salesman_id"`
	Total       decimal.Decimal `json:"total"`
	BillCount   int64           `json:"bill_count"`
	PendingSync int64           `json:"pending_sync"`
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs the reports service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db, now: time.Now}, nil
}

func (s *service) Overview(ctx context.Context) (*OverviewDTO, error) {
	out := &OverviewDTO{}

	var totals struct {
		Revenue decimal.Decimal
		Bills   int64
	}
	err := s.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS bills FROM sales`).
		Scan(&totals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: revenue totals")
	}
	out.TotalRevenue = totals.Revenue
	out.BillCount = totals.Bills

	// Weight sold counts half-kg packs at 0.5 per unit.
	var kg decimal.Decimal
	err = s.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(CASE WHEN pack = '0.5kg' THEN quantity * 0.5 ELSE quantity END), 0)
		     FROM sale_items`).
		Scan(&kg).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: kg sold")
	}
	out.TotalKgSold = kg

	series, err := s.last7Days(ctx)
	if err != nil {
		return nil, err
	}
	out.Last7Days = series

	salesmen, err := s.salesmanSummaries(ctx)
	if err != nil {
		return nil, err
	}
	out.Salesmen = salesmen

	return out, nil
}

func (s *service) last7Days(ctx context.Context) ([]DailyRevenueDTO, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -6)

	var rows []struct {
		Day     string
		Revenue decimal.Decimal
		Bills   int64
	}
	err := s.db.WithContext(ctx).
		Raw(`SELECT strftime('%Y-%m-%d', date) AS day,
		            COALESCE(SUM(total_amount), 0) AS revenue,
		            COUNT(*) AS bills
		     FROM sales
		     WHERE date >= ?
		     GROUP BY day`, start).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: daily revenue")
	}

	byDay := make(map[string]DailyRevenueDTO, len(rows))
	for _, row := range rows {
		byDay[row.Day] = DailyRevenueDTO{Date: row.Day, Revenue: row.Revenue, Bills: row.Bills}
	}

	// Every day appears in the series, sold or not.
	series := make([]DailyRevenueDTO, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		if entry, ok := byDay[day]; ok {
			series = append(series, entry)
			continue
		}
		series = append(series, DailyRevenueDTO{Date: day, Revenue: decimal.Zero})
	}
	return series, nil
}

func (s *service) salesmanSummaries(ctx context.Context) ([]SalesmanSummaryDTO, error) {
	var rows []struct {
		SalesmanID string
		Total      decimal.Decimal
		Bills      int64
		Pending    int64
	}
	err := s.db.WithContext(ctx).
		Raw(`SELECT salesman_id,
		            COALESCE(SUM(total_amount), 0) AS total,
		            COUNT(*) AS bills,
		            COALESCE(SUM(CASE WHEN synced = 0 THEN 1 ELSE 0 END), 0) AS pending
		     FROM sales
		     GROUP BY salesman_id
		     ORDER BY salesman_id`).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: salesman summaries")
	}

	out := make([]SalesmanSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, SalesmanSummaryDTO{
			SalesmanID:  row.SalesmanID,
			Total:       row.Total,
			BillCount:   row.Bills,
			PendingSync: row.Pending,
		})
	}
	return out, nil
}
