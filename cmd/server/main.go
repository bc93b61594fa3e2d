// main wires the registration engine's dependencies and keeps the server
// lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"regflow/internal/antiforgery"
	"regflow/internal/audit"
	"regflow/internal/calculator"
	"regflow/internal/engine"
	"regflow/internal/files"
	"regflow/internal/payment"
	"regflow/internal/platform/config"
	"regflow/internal/platform/httpserver"
	"regflow/internal/platform/logger"
	"regflow/internal/platform/metrics"
	platformredis "regflow/internal/platform/redis"
	"regflow/internal/registration"
	"regflow/internal/session"
	"regflow/internal/steps"
	httptransport "regflow/internal/transport/http"
	"regflow/internal/visitor"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()
	ctx := context.Background()

	// Session identities: Redis when configured, in-memory otherwise.
	var sessions session.Manager
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisManager(redisClient.Client, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryManager(cfg.SessionTTL)
	}

	// Registration, visitor, and attachment-metadata persistence.
	var (
		regStore     registration.Store
		visitorStore visitor.Store
		metaStore    files.MetaStore
	)
	if cfg.PostgresDSN != "" {
		pgStore, err := registration.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer pgStore.Close()
		if err := pgStore.InitSchema(ctx); err != nil {
			log.Error("schema init failed", "error", err.Error())
			os.Exit(1)
		}
		pgMeta := files.NewPostgresMetaStore(pgStore.Pool())
		if err := pgMeta.InitSchema(ctx); err != nil {
			log.Error("attachment schema init failed", "error", err.Error())
			os.Exit(1)
		}
		regStore = pgStore
		visitorStore = visitor.NewPostgresStore(pgStore.Pool())
		metaStore = pgMeta
	} else {
		regStore = registration.NewMemoryStore()
		visitorStore = visitor.NewMemoryStore()
		metaStore = files.NewMemoryMetaStore()
	}

	// Attachment content: filesystem when a directory is configured.
	var blobs files.BlobStore
	if cfg.FileStorageDir != "" {
		fsBlobs, err := files.NewFSBlobStore(cfg.FileStorageDir)
		if err != nil {
			log.Error("file storage init failed", "error", err.Error())
			os.Exit(1)
		}
		blobs = fsBlobs
	} else {
		blobs = files.NewMemoryBlobStore()
	}
	attachments := files.NewManager(metaStore, blobs, log)

	// Audit trail, optionally fanned out to Kafka.
	var producer *kgo.Client
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kgo.NewClient(
			kgo.SeedBrokers(cfg.KafkaBrokers...),
			kgo.DefaultProduceTopic(cfg.AuditTopic),
		)
		if err != nil {
			log.Error("kafka connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer producer.Close()
	}
	auditPub := audit.NewPublisher(audit.NewMemoryStore(), producer, cfg.AuditTopic, log)

	catalog, err := calculator.New(calculator.Default())
	if err != nil {
		log.Error("calculator catalog invalid", "error", err.Error())
		os.Exit(1)
	}

	var gateway steps.PaymentGateway
	if cfg.PaymentStatusURL != "" {
		gateway = payment.NewHTTPGateway(cfg.PaymentStatusURL)
	} else {
		gateway = payment.NoopGateway{Logger: log}
	}

	resolver := visitor.NewResolver(visitorStore)
	regService := registration.NewService(regStore, catalog, resolver, auditPub, log)
	stepCtl := steps.NewController(regStore, gateway, sessions, auditPub, m, log)
	regService.SetStepAdvancer(stepCtl)

	tokens := antiforgery.NewService(cfg.TokenSigningKey, time.Hour)
	eng := engine.New(regService, attachments, catalog, stepCtl, tokens, engine.StaticOptions{}, m, log)

	handler := httptransport.NewHandler(eng, sessions, log)
	router := httptransport.NewRouter(handler, log, m)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting regflow", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
