package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"confpaper/internal/audit"
	audithandler "confpaper/internal/audit/handler"
	auditkafka "confpaper/internal/audit/kafka"
	auditmemory "confpaper/internal/audit/store/memory"
	auditpostgres "confpaper/internal/audit/store/postgres"
	"confpaper/internal/filestore"
	httpapi "confpaper/internal/http"
	"confpaper/internal/identity"
	jwttoken "confpaper/internal/jwt_token"
	paperhandler "confpaper/internal/paper/handler"
	papermetrics "confpaper/internal/paper/metrics"
	paperservice "confpaper/internal/paper/service"
	paperstore "confpaper/internal/paper/store"
	"confpaper/internal/platform/config"
	"confpaper/internal/platform/database"
	"confpaper/internal/platform/httpserver"
	"confpaper/internal/platform/logger"
	"confpaper/internal/platform/metrics"
	"confpaper/internal/platform/redis"
	reviewhandler "confpaper/internal/review/handler"
	reviewservice "confpaper/internal/review/service"
	reviewstore "confpaper/internal/review/store"
	"confpaper/pkg/platform/middleware/auth"
)

// auditOutboxSize bounds events waiting for the external sink.
const auditOutboxSize = 1024

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "confpaper: %v\n", err)
		os.Exit(1)
	}
}

// persistence is the set of stores selected by the configured driver.
type persistence struct {
	papers    paperReferenceStore
	tx        paperservice.StoreTx
	reviews   reviewservice.Store
	audit     audit.Store
	directory paperservice.UserDirectory
	ping      httpapi.HealthCheck
	close     func() error
}

type paperReferenceStore interface {
	paperservice.Store
	filestore.ReferenceSource
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := openPersistence(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.close(); err != nil {
			log.Warn("closing database", "error", err)
		}
	}()

	storage, err := openFileStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	checks := map[string]httpapi.HealthCheck{}
	if p.ping != nil {
		checks["database"] = p.ping
	}

	var revocations auth.TokenRevocationChecker
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = jwttoken.NewRedisRevocationList(redisClient)
		checks["redis"] = redisClient.Health
	}

	g, gctx := errgroup.WithContext(ctx)

	publisherOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := auditkafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return err
		}
		defer client.Close()
		outbox := make(chan audit.Event, auditOutboxSize)
		publisherOpts = append(publisherOpts, audit.WithOutbox(outbox))
		worker := audit.NewWorker(auditkafka.NewSink(client, cfg.Kafka.Topic), outbox, log)
		g.Go(func() error { return worker.Run(gctx) })
		log.Info("audit events forwarded to kafka", "topic", cfg.Kafka.Topic)
	}
	publisher := audit.NewPublisher(p.audit, publisherOpts...)

	paperOpts := []paperservice.Option{
		paperservice.WithLogger(log),
		paperservice.WithMetrics(papermetrics.New()),
		paperservice.WithAuditPublisher(publisher),
		paperservice.WithTx(p.tx),
		paperservice.WithUserDirectory(p.directory),
	}
	reviews := reviewservice.New(p.reviews, p.papers,
		reviewservice.WithLogger(log),
		reviewservice.WithAuditPublisher(publisher),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:      log,
		Metrics:     metrics.New(),
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Revocations: revocations,
		Papers: paperhandler.New(
			paperservice.NewSubmissionService(p.papers, storage, paperOpts...),
			paperservice.NewQueryService(p.papers, storage, paperOpts...),
			paperservice.NewLifecycleService(p.papers, paperOpts...),
			log, cfg.Storage.MaxUpload,
		),
		Reviews: reviewhandler.New(reviews, log),
		Audit:   audithandler.New(publisher, log),
		Checks:  checks,
	})

	if cfg.Sweeper.Enabled {
		sweeper := filestore.NewSweeper(storage, p.papers, cfg.Sweeper.Grace, log)
		if err := sweeper.Start(gctx, cfg.Sweeper.Schedule); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	srv := httpserver.New(cfg.Server.Addr, router)
	g.Go(func() error {
		log.Info("starting confpaper", "addr", cfg.Server.Addr,
			"database", cfg.Database.Driver, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openPersistence(ctx context.Context, cfg config.Database) (*persistence, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &persistence{
			papers:    paperstore.NewPostgres(db),
			tx:        paperservice.NewSQLTx(db, func(tx *sql.Tx) paperservice.Store { return paperstore.NewPostgresTx(tx) }),
			reviews:   reviewstore.NewPostgres(db),
			audit:     auditpostgres.New(db),
			directory: identity.NewPostgresDirectory(db),
			ping:      db.PingContext,
			close:     db.Close,
		}, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		// Audit events stay in process memory on SQLite deployments.
		return &persistence{
			papers:    paperstore.NewSQLite(db),
			tx:        paperservice.NewSQLTx(db, func(tx *sql.Tx) paperservice.Store { return paperstore.NewSQLiteTx(tx) }),
			reviews:   reviewstore.NewSQLite(db),
			audit:     auditmemory.NewInMemoryStore(),
			directory: identity.NewSQLiteDirectory(db),
			ping:      db.PingContext,
			close:     db.Close,
		}, nil
	default:
		papers := paperstore.NewInMemory()
		return &persistence{
			papers:    papers,
			tx:        paperservice.NewShardedTx(papers),
			reviews:   reviewstore.NewInMemory(),
			audit:     auditmemory.NewInMemoryStore(),
			directory: identity.NewInMemoryDirectory(),
			close:     func() error { return nil },
		}, nil
	}
}

// fileBackend serves both paper uploads and the orphan sweeper.
type fileBackend interface {
	paperservice.FileStorage
	filestore.Walker
}

func openFileStorage(ctx context.Context, cfg config.Storage) (fileBackend, error) {
	if cfg.Backend == config.StorageS3 {
		client, err := filestore.NewS3Client(ctx, filestore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return filestore.NewS3(client, cfg.S3Bucket), nil
	}
	local, err := filestore.NewLocal(cfg.Root)
	if err != nil {
		return nil, err
	}
	return local, nil
}
