package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldops/visits-service/internal/auth"
	"github.com/fieldops/visits-service/internal/config"
	"github.com/fieldops/visits-service/internal/db"
	"github.com/fieldops/visits-service/internal/excel"
	httphandler "github.com/fieldops/visits-service/internal/http"
	"github.com/fieldops/visits-service/internal/http/middleware"
	"github.com/fieldops/visits-service/internal/logger"
	"github.com/fieldops/visits-service/internal/pdf"
	"github.com/fieldops/visits-service/internal/repository"
	"github.com/fieldops/visits-service/internal/scheduler"
	"github.com/fieldops/visits-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	clientRepo := repository.NewClientRepository(database)
	contractRepo := repository.NewContractRepository(database)
	visitRepo := repository.NewVisitRepository(database, cfg.Visits.ReferencePrefix)
	folderRepo := repository.NewFolderRepository(database)
	documentRepo := repository.NewDocumentRepository(database)

	reportService := service.NewReportService(clientRepo, contractRepo, visitRepo, documentRepo, pdf.NewGenerator())
	generator := service.NewGenerator(contractRepo, visitRepo, folderRepo, reportService, log)
	contractService := service.NewContractService(contractRepo, clientRepo, visitRepo, folderRepo, generator, log)
	visitService := service.NewVisitService(visitRepo, clientRepo, contractRepo, folderRepo, documentRepo, reportService, log)
	folderService := service.NewFolderService(folderRepo, documentRepo)
	exportService := service.NewExportService(contractRepo, visitRepo, excel.NewGenerator())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		trigger := scheduler.NewDailyTrigger(scheduler.Config{
			RunHour:   cfg.Scheduler.RunHour,
			RunMinute: cfg.Scheduler.RunMinute,
		}, generator, log)
		trigger.Start(ctx)
		defer trigger.Stop()
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, visitService, generator, folderService, exportService, clientRepo, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting visits service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
