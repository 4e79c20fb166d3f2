package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/go-chi/httplog/v2"
	"github.com/wesky93/views/internal/audit"
	"github.com/wesky93/views/internal/badge"
	"github.com/wesky93/views/internal/config"
	dbpostgres "github.com/wesky93/views/internal/database/postgres"
	"github.com/wesky93/views/internal/service"
	"github.com/wesky93/views/pkg/postgres"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/wesky93/views/internal/api/http"
)

// Run wires the service together and serves HTTP until ctx is canceled.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := httplog.NewLogger("views", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
		LogLevel: slog.LevelInfo,
	})

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	emitter, err := newEmitter(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: failed to create audit emitter: %w", op, err)
	}

	counterRepo := dbpostgres.NewCounterRepository(db, cfg.Counter.Table)
	viewSvc := service.NewViewService(counterRepo)
	renderer := badge.NewSVGRenderer()

	r := myhttp.NewRouter(logger, viewSvc, renderer, emitter, cfg.BadgeLabel)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// newEmitter builds the audit sink: structured log in dev, firehose when
// configured.
func newEmitter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (audit.Emitter, error) {
	const op = "app.newEmitter"

	switch cfg.Audit.Sink {
	case config.AuditSinkFirehose:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Audit.Region))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to load aws config: %w", op, err)
		}

		return audit.NewFirehoseEmitter(firehose.NewFromConfig(awsCfg), cfg.Audit.Stream), nil
	default:
		return audit.NewLogEmitter(logger), nil
	}
}
