package main

import (
	"fmt"
	"os"

	"github.com/anupk/wpts-service/internal/auth"
	"github.com/anupk/wpts-service/internal/config"
	"github.com/anupk/wpts-service/internal/db"
	"github.com/anupk/wpts-service/internal/excel"
	httphandler "github.com/anupk/wpts-service/internal/http"
	"github.com/anupk/wpts-service/internal/http/middleware"
	"github.com/anupk/wpts-service/internal/logger"
	"github.com/anupk/wpts-service/internal/pdf"
	"github.com/anupk/wpts-service/internal/repository"
	"github.com/anupk/wpts-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	var paymentStore service.PaymentStore
	var workerStore service.WorkerStore

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		paymentStore = repository.NewPaymentRepository(database)
		workerStore = repository.NewWorkerRepository(database)
	default:
		paymentStore = repository.NewMemoryPaymentStore()
		workerStore = repository.NewMemoryWorkerStore()
	}

	tokens := auth.NewManager(cfg.Auth.AccessSecret, cfg.Auth.WorkerTokenTTL)

	paymentService := service.NewPaymentService(paymentStore, excel.NewGenerator(), pdf.NewGenerator())
	workerService := service.NewWorkerService(workerStore, paymentStore, tokens)

	handler := httphandler.NewHandler(paymentService, workerService, log)
	workerAuth := middleware.WorkerAuth(tokens)
	router := httphandler.NewRouter(handler, workerAuth, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("store", cfg.Store.Driver).Msg("starting wpts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
