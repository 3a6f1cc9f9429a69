package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"attestry/internal/audit"
	"attestry/internal/platform/config"
	"attestry/internal/platform/httpserver"
	"attestry/internal/platform/logger"
	"attestry/internal/platform/middleware"
	registrymetrics "attestry/internal/registry/metrics"
	"attestry/internal/registry/service"
	agencystore "attestry/internal/registry/store/agency"
	attestationstore "attestry/internal/registry/store/attestation"
	subjectstore "attestry/internal/registry/store/subject"
	httptransport "attestry/internal/transport/http"
	id "attestry/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		agencies service.AgencyStore
		subjects service.SubjectStore
		ledger   service.AttestationStore
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		agencyPg := agencystore.NewPostgres(db)
		subjectPg := subjectstore.NewPostgres(db)
		if err := agencyPg.EnsureSchema(ctx); err != nil {
			log.Error("failed to migrate agencies", "error", err)
			os.Exit(1)
		}
		if err := subjectPg.EnsureSchema(ctx); err != nil {
			log.Error("failed to migrate subjects", "error", err)
			os.Exit(1)
		}
		agencies = agencyPg
		subjects = subjectPg
	} else {
		agencies = agencystore.NewInMemory()
		subjects = subjectstore.NewInMemory()
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		ledger = attestationstore.NewRedis(client)
	} else {
		ledger = attestationstore.NewInMemory()
	}

	var sink audit.Sink = audit.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to create kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		sink = kafka
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(256))
	defer publisher.Close()

	registry, err := service.New(
		id.AgencyID(cfg.AuthorityAddr), cfg.AuthorityName,
		agencies, subjects, ledger,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(registrymetrics.New()),
	)
	if err != nil {
		log.Error("failed to initialize registry", "error", err)
		os.Exit(1)
	}

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(httptransport.NewHandler(registry), validator, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting attestry", "addr", cfg.Addr, "authority", cfg.AuthorityAddr)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
