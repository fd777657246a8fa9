package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/day-booking/internal/config"
	"github.com/iliyamo/day-booking/internal/handler"
	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/metrics"
	"github.com/iliyamo/day-booking/internal/middleware"
	"github.com/iliyamo/day-booking/internal/queue"
	"github.com/iliyamo/day-booking/internal/repository"
	"github.com/iliyamo/day-booking/internal/router"
	"github.com/iliyamo/day-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	log := logger.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open storage", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeBackend()
	log.Info("storage ready", "driver", cfg.Store.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.MetricsNamespace, reg)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitURL)
		log.Info("booking events enabled", "queue", queue.QueueName)
		if cfg.AuditLogPath != "" {
			audit := &queue.AuditConsumer{URL: cfg.RabbitURL, Path: cfg.AuditLogPath, Log: log.With("component", "audit")}
			go func() {
				if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("audit consumer stopped", "error", err)
				}
			}()
		}
	}

	store := repository.NewRecordStore(backend, log.With("component", "store"))
	bookings := service.NewBookingService(repository.NewBookingRepo(store), events, m, log.With("component", "bookings"))
	profiles := service.NewProfileService(repository.NewProfileRepo(store), log.With("component", "profile"))
	backups := service.NewBackupService(store, bookings, m, log.With("component", "backup"))
	calendar := service.NewCalendarService(bookings)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(log.With("component", "http"), m))
	router.RegisterRoutes(e, reg)
	router.RegisterAPI(e, router.API{
		Bookings: handler.NewBookingHandler(bookings),
		Calendar: handler.NewCalendarHandler(calendar),
		Profile:  handler.NewProfileHandler(profiles),
		Backup:   handler.NewBackupHandler(backups),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
