package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/avstore/avpos-backend/internal/customers"
	"github.com/avstore/avpos-backend/internal/products"
	"github.com/avstore/avpos-backend/internal/sales"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/logger"
	"github.com/avstore/avpos-backend/pkg/metrics"
)

// Service is the sync engine: export packaging on one side, the
// import/merge reconciler on the other.
type Service interface {
	ExportDelta(ctx context.Context, salesmanID string) (*ExportFile, error)
	ExportMaster(ctx context.Context) (*ExportFile, error)
	Import(ctx context.Context, raw []byte, opts ImportOptions) (*ImportResult, error)
}

type service struct {
	repo         *Repository
	salesRepo    *sales.Repository
	productRepo  *products.Repository
	customerRepo *customers.Repository
	dbClient     *db.Client
	logger       *logger.Logger
	metrics      *metrics.SyncMetrics
	now          func() time.Time
}

// NewService constructs the sync engine. Metrics may be nil, in which case
// recording is a no-op.
func NewService(
	repo *Repository,
	salesRepo *sales.Repository,
	productRepo *products.Repository,
	customerRepo *customers.Repository,
	dbClient *db.Client,
	logg *logger.Logger,
	syncMetrics *metrics.SyncMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync repository required")
	}
	if salesRepo == nil {
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
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		salesRepo:    salesRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		dbClient:     dbClient,
		logger:       logg,
		metrics:      syncMetrics,
		now:          time.Now,
	}, nil
}
