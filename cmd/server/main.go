package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/authz"
	"github.com/machelox/Proyecto-Cyberia/internal/config"
	"github.com/machelox/Proyecto-Cyberia/internal/infra"
	"github.com/machelox/Proyecto-Cyberia/internal/metrics"
	"github.com/machelox/Proyecto-Cyberia/internal/router"
	"github.com/machelox/Proyecto-Cyberia/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger (dev: pretty, prod: JSON)
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	if cfg.NotifySecret == "" {
		log.Warn().Msg("NOTIFY_SECRET is empty: wallet notifications will be rejected")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	m := metrics.New()
	dispatcher := worker.NewDispatcher(rdb)

	deps := router.Deps{
		DB:         db,
		Redis:      rdb,
		Mailer:     mailer,
		Metrics:    m,
		Enforcer:   authz.MustNew(),
		Dispatcher: dispatcher,
	}
	svcs := router.NewServicios(cfg, deps)
	if err := svcs.Permisos.Cargar(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load role permissions")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// shares the services used by the HTTP layer.
	pool := worker.NewPool(rdb, m)
	pool.Register(worker.QueueCierre, worker.NewCierreWorker(mailer, cfg.PDFStoragePath, cfg.CierreReportEmail))
	pool.Register(worker.QueuePagoDigital, worker.NewPagoDigitalWorker(svcs.Pagos))
	pool.Register(worker.QueueEmail, worker.NewEmailWorker(mailer))
	pool.Start(ctx, cfg.WorkerPoolSize)

	scheduler := worker.NewScheduler()
	if cfg.DebtReminderCron != "" {
		job := worker.NewRecordatorioDeudas(svcs.Deudas, dispatcher, cfg.CierreReportEmail)
		if err := scheduler.AddJob(ctx, cfg.DebtReminderCron, job); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule debt reminder")
		}
	}
	scheduler.Start()

	r := router.New(ctx, cfg, deps, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cyberia backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	scheduler.Stop()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
