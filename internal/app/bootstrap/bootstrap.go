package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	certificateservice "ugnayan/contexts/community-engagement/certificate-service"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/gcs"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/memory"
	postgresadapter "ugnayan/contexts/community-engagement/certificate-service/adapters/postgres"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/render"
	"ugnayan/contexts/community-engagement/certificate-service/adapters/smtp"
	"ugnayan/contexts/community-engagement/certificate-service/application/commands"
	workerapp "ugnayan/contexts/community-engagement/certificate-service/application/workers"
	"ugnayan/contexts/community-engagement/certificate-service/ports"
	"ugnayan/internal/platform/config"
	"ugnayan/internal/platform/db"
	"ugnayan/internal/platform/httpserver"
	"ugnayan/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	module   certificateservice.Module
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	jobRunner    workerapp.BatchJobRunner
	outboxRelay  workerapp.OutboxRelay
	delivery     workerapp.DeliveryConsumer
	pollInterval time.Duration

	runJobs     bool
	runRelay    bool
	runDelivery bool

	logger *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	blobs, err := buildBlobStore(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := certificateservice.NewModule(certificateservice.Dependencies{
		Records:     repo,
		Respondents: repo,
		Jobs:        repo,
		Outbox:      repo,
		Blobs:       blobs,
		Encoder:     render.QREncoder{Host: cfg.VerificationHost},
		Renderer:    render.Renderer{Logger: logger},
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		QueueSize:   cfg.LocalQueueSize,
		Logger:      logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		module:   module,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	blobs, err := buildBlobStore(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := certificateservice.NewModule(certificateservice.Dependencies{
		Records:     repo,
		Respondents: repo,
		Jobs:        repo,
		Outbox:      repo,
		Blobs:       blobs,
		Encoder:     render.QREncoder{Host: cfg.VerificationHost},
		Renderer:    render.Renderer{Logger: logger},
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		QueueSize:   cfg.LocalQueueSize,
		Logger:      logger,
	})

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		postgres: pg,
		jobRunner: workerapp.BatchJobRunner{
			Commands:  module.Commands,
			Jobs:      repo,
			BatchSize: 10,
			Logger:    logger,
		},
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			Topic:     commands.DeliveryRequestedEventType,
			BatchSize: 100,
			Logger:    logger,
		},
		delivery: workerapp.DeliveryConsumer{
			Subscriber: bus,
			Mailer:     buildMailer(cfg, logger),
			Logger:     logger,
		},
		pollInterval: cfg.WorkerPollInterval,

		runJobs:     cfg.EnableBatchJobRunner,
		runRelay:    cfg.EnableOutboxRelay,
		runDelivery: cfg.EnableDeliveryConsumer,

		logger: logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.module.Runner != nil {
		a.module.Runner.Stop()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.runDelivery {
		if err := w.delivery.Start(ctx); err != nil {
			return err
		}
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	group, ctx := errgroup.WithContext(ctx)
	if w.runJobs {
		group.Go(func() error {
			return w.pollLoop(ctx, w.jobRunner.RunOnce)
		})
	}
	if w.runRelay {
		group.Go(func() error {
			return w.pollLoop(ctx, w.outboxRelay.RunOnce)
		})
	}
	return group.Wait()
}

func (w *WorkerApp) pollLoop(ctx context.Context, runOnce func(context.Context) error) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if err := runOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func buildBlobStore(cfg config.Config, logger *slog.Logger) (ports.BlobStore, error) {
	if cfg.GCSBucket == "" {
		// Local development fallback; documents stay in process memory.
		return memory.NewStore(nil), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return gcs.NewBlobStore(ctx, gcs.BlobStoreConfig{
		Bucket:          cfg.GCSBucket,
		CredentialsFile: cfg.GCSCredentialsFile,
	}, logger)
}

func buildMailer(cfg config.Config, logger *slog.Logger) ports.Mailer {
	if !cfg.EnableSMTPDelivery || cfg.SMTPHost == "" {
		return smtp.LogMailer{Logger: logger}
	}
	return smtp.NewMailer(smtp.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
