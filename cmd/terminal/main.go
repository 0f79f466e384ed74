package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avstore/avpos-backend/api/routes"
	authsvc "github.com/avstore/avpos-backend/internal/auth"
	customersvc "github.com/avstore/avpos-backend/internal/customers"
	maintenancesvc "github.com/avstore/avpos-backend/internal/maintenance"
	productsvc "github.com/avstore/avpos-backend/internal/products"
	reportsvc "github.com/avstore/avpos-backend/internal/reports"
	salesvc "github.com/avstore/avpos-backend/internal/sales"
	syncsvc "github.com/avstore/avpos-backend/internal/sync"
	"github.com/avstore/avpos-backend/pkg/config"
	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/logger"
	"github.com/avstore/avpos-backend/pkg/metrics"
	"github.com/avstore/avpos-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	productRepo := productsvc.NewRepository(conn)
	customerRepo := customersvc.NewRepository(conn)
	salesRepo := salesvc.NewRepository(conn)

	productService, err := productsvc.NewService(productRepo, dbClient)
	exitOnErr(logg, "product service", err)

	customerService, err := customersvc.NewService(customerRepo, dbClient)
	exitOnErr(logg, "customer service", err)

	salesService, err := salesvc.NewService(salesRepo, productRepo, customerRepo, dbClient)
	exitOnErr(logg, "sales service", err)

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncService, err := syncsvc.NewService(
		syncsvc.NewRepository(conn),
		salesRepo,
		productRepo,
		customerRepo,
		dbClient,
		logg,
		syncMetrics,
	)
	exitOnErr(logg, "sync service", err)

	reportsService, err := reportsvc.NewService(conn)
	exitOnErr(logg, "reports service", err)

	maintenanceService, err := maintenancesvc.NewService(conn, dbClient, cfg.Security)
	exitOnErr(logg, "maintenance service", err)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		DB:       conn,
		JWT:      cfg.JWT,
		Security: cfg.Security,
	})
	exitOnErr(logg, "auth service", err)

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"role": cfg.Terminal.Role,
	})
	if cfg.Terminal.SalesmanID != "" {
		ctx = logg.WithSalesmanID(ctx, cfg.Terminal.SalesmanID)
	}
	logg.Info(ctx, "starting terminal server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, routes.Services{
			Auth:        authService,
			Products:    productService,
			Customers:   customerService,
			Sales:       salesService,
			Sync:        syncService,
			Reports:     reportsService,
			Maintenance: maintenanceService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "terminal server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down terminal server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func exitOnErr(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
