package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"boxtribute/internal/agreement"
	"boxtribute/internal/auth"
	boxhandler "boxtribute/internal/box/handler"
	boxservice "boxtribute/internal/box/service"
	boxstore "boxtribute/internal/box/store"
	"boxtribute/internal/history"
	httpapi "boxtribute/internal/http"
	"boxtribute/internal/label"
	"boxtribute/internal/platform/config"
	"boxtribute/internal/platform/httpserver"
	"boxtribute/internal/platform/logger"
	platformmetrics "boxtribute/internal/platform/metrics"
	"boxtribute/internal/platform/postgres"
	platformredis "boxtribute/internal/platform/redis"
	"boxtribute/internal/qrcode"
	shipmenthandler "boxtribute/internal/shipment/handler"
	shipmentmetrics "boxtribute/internal/shipment/metrics"
	shipmentservice "boxtribute/internal/shipment/service"
	shipmentstore "boxtribute/internal/shipment/store"
	"boxtribute/internal/warehouse"
	"boxtribute/pkg/platform/tx"
)

// main wires the dependency graph and owns the process lifecycle. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	boxes := boxstore.NewPostgres(db)
	shipments := shipmentstore.NewPostgres(db)
	refs := warehouse.NewPostgres(db)
	agreements := agreement.NewPostgres(db)
	historyStore := history.NewPostgres(db)

	var qrStore boxservice.QRStore
	if redisClient != nil {
		defer redisClient.Close()
		qrStore = qrcode.NewRedis(redisClient.Client)
	} else {
		log.Warn("redis not configured, using in-memory qr code store")
		qrStore = qrcode.NewInMemoryStore()
	}

	ledgerOpts := []history.Option{history.WithLogger(log)}
	var publisher *history.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = history.NewKafkaPublisher(ctx, cfg.Kafka.Brokers,
			history.WithTopic(cfg.Kafka.HistoryTopic),
			history.WithPublisherLogger(log),
		)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		ledgerOpts = append(ledgerOpts, history.WithPublisher(publisher))
	} else {
		log.Warn("kafka not configured, history stream disabled")
	}
	ledger := history.NewLedger(historyStore, ledgerOpts...)

	labels := label.New(&uniquenessChecker{boxes: boxes, shipments: shipments})
	gate := agreement.NewGate(agreements)
	txRunner := tx.NewSQLRunner(db)

	boxSvc := boxservice.New(boxes, refs, labels, ledger, txRunner,
		boxservice.WithLogger(log),
		boxservice.WithQRStore(qrStore),
	)
	shipmentSvc := shipmentservice.New(shipments, boxes, refs, gate, labels, ledger, txRunner,
		shipmentservice.WithLogger(log),
		shipmentservice.WithMetrics(shipmentmetrics.New()),
	)

	validator := auth.NewTokenValidator(cfg.JWTSigningKey)
	httpMetrics := platformmetrics.New()

	router := httpapi.NewRouter(
		boxhandler.New(boxSvc, log, httpMetrics, validator),
		shipmenthandler.New(shipmentSvc, log, httpMetrics, validator),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			return publisher.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
