package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the preview HTTP service",
	RunE:    runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(map[string]interface{}{"app": cfg.App.Name, "env": cfg.App.Environment})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	reg, err := templates.NewRegistry()
	if err != nil {
		return err
	}
	resolver := usecase.NewResolver(reg, log, m)

	exporterOpts := []usecase.ExporterOption{usecase.WithRetry(cfg.Renderer.Attempts, time.Second)}
	if cfg.Redis.Address != "" {
		client, err := infra.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("pdf cache not available", map[string]interface{}{"address": cfg.Redis.Address})
		} else {
			defer client.Close()
			exporterOpts = append(exporterOpts, usecase.WithCache(infra.NewRedisPDFCache(client, cfg.Redis.TTL)))
		}
	}
	renderer := infra.NewChromedpRenderer(cfg.Renderer.ChromePath, cfg.Renderer.Timeout)
	exporter := usecase.NewExporter(renderer, log, m, exporterOpts...)

	var history httpadapter.History
	if cfg.Database.URL != "" {
		pool, err := infra.NewHistoryPool(ctx, cfg.Database.URL)
		if err != nil {
			log.WithError(err).Warn("render history DB not available", nil)
		} else {
			defer pool.Close()
			if cfg.Database.RunMigrations {
				if err := migration.RunMigrations(ctx, pool, log); err != nil {
					return err
				}
			}
			history = repo.NewRendersRepo(pool)
		}
	}

	h := httpadapter.NewHandler(resolver, exporter, history, log, m, cfg.Server.ResolveTimeout)
	routerOpts := httpadapter.RouterOptions{
		ReadTimeout:    cfg.Server.ReadTimeout,
		ReadBufferSize: cfg.Server.ReadBufferSize,
	}
	if cfg.Metrics.Enabled {
		routerOpts.MetricsPath = cfg.Metrics.Path
		routerOpts.Gatherer = promReg
	}
	app := httpadapter.NewRouter(h, routerOpts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", map[string]interface{}{"addr": cfg.Server.Addr()})
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.WithError(err).Error("server stopped", nil)
		return err
	}
	return nil
}
