package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avstore/avpos-backend/api/controllers"
	"github.com/avstore/avpos-backend/api/middleware"
	authsvc "github.com/avstore/avpos-backend/internal/auth"
	customersvc "github.com/avstore/avpos-backend/internal/customers"
	maintenancesvc "github.com/avstore/avpos-backend/internal/maintenance"
	productsvc "github.com/avstore/avpos-backend/internal/products"
	reportsvc "github.com/avstore/avpos-backend/internal/reports"
	salesvc "github.com/avstore/avpos-backend/internal/sales"
	syncsvc "github.com/avstore/avpos-backend/internal/sync"
	"github.com/avstore/avpos-backend/pkg/config"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/enums"
	"github.com/avstore/avpos-backend/pkg/logger"
)

// Services bundles everything the router mounts. Keeping it a struct
// saves the call sites from a parade of positional arguments.
type Services struct {
	Auth        authsvc.Service
	Products    productsvc.Service
	Customers   customersvc.Service
	Sales       salesvc.Service
	Sync        syncsvc.Service
	Reports     reportsvc.Service
	Maintenance maintenancesvc.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.Login(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(svcs.Products, logg))
				r.Get("/stock-logs", controllers.ListStockLogs(svcs.Products, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(string(enums.TerminalRoleAdmin), logg))
					r.Post("/", controllers.CreateProduct(svcs.Products, logg))
					r.Put("/{productId}", controllers.UpdateProduct(svcs.Products, logg))
					r.Delete("/{productId}", controllers.DeleteProduct(svcs.Products, logg))
					r.Post("/{productId}/stock", controllers.AdjustStock(svcs.Products, logg))
				})
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
				r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
				r.Put("/{customerId}", controllers.UpdateCustomer(svcs.Customers, logg))
				r.Delete("/{customerId}", controllers.DeleteCustomer(svcs.Customers, logg))
			})

			r.Route("/sales", func(r chi.Router) {
				r.Post("/", controllers.FinalizeSale(svcs.Sales, logg))
				r.Get("/", controllers.ListSales(svcs.Sales, logg))
				r.Get("/summary", controllers.SalesSummary(svcs.Sales, logg))
			})

			r.Route("/sync", func(r chi.Router) {
				r.Post("/export", controllers.ExportDelta(svcs.Sync, logg))
				r.Post("/import", controllers.Import(svcs.Sync, logg))

				r.With(middleware.RequireRole(string(enums.TerminalRoleAdmin), logg)).
					Get("/backup", controllers.ExportMaster(svcs.Sync, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.TerminalRoleAdmin), logg))

				r.Post("/auth/admin-secret", controllers.ChangeAdminSecret(svcs.Auth, logg))
				r.Get("/reports/overview", controllers.ReportsOverview(svcs.Reports, logg))

				r.Route("/maintenance", func(r chi.Router) {
					r.Post("/unlock", controllers.MaintenanceUnlock(svcs.Maintenance, logg))
					r.Get("/tables/{table}", controllers.MaintenanceInspectTable(svcs.Maintenance, logg))
					r.Delete("/tables/{table}", controllers.MaintenancePurgeTable(svcs.Maintenance, logg))
				})
			})
		})
	})

	return r
}
