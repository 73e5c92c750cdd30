package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/ingest"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/ledger"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/pipeline"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/policy"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/review"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/validation"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/config"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/document"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/external/lark"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/external/openai"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/imaging"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/persistence/repository"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/persistence/sqlite"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/report"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/sidecar"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/storage"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/interfaces/console"
	reviewhttp "github.com/sriram-gona-01/expense-project-finalcode/internal/interfaces/http"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/tracing"
	"github.com/sriram-gona-01/expense-project-finalcode/migrations"
	"github.com/sriram-gona-01/expense-project-finalcode/pkg/database"
)

// app holds the wired pipeline and everything that must be released after the run
type app struct {
	pipeline *pipeline.Pipeline
	writer   *report.ExcelWriter
	receipts []port.ReceiptRef
	closers  []func() error
	logger   *zap.Logger
}

// newApp performs every setup step. Any error here is a setup failure and
// nothing has been processed yet.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Tracing.Enabled {
		if err := a.initTracing(cfg.Tracing); err != nil {
			return nil, err
		}
	}

	store := storage.NewReceiptStore(nil, logger, cfg.Pipeline.Extensions...)
	a.receipts, err = store.List(ctx, cfg.Pipeline.ImageDir)
	if err != nil {
		return nil, err
	}

	extractor, err := newExtractor(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	reviewer, err := a.newReviewer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var recorder port.RunRecorder
	if cfg.Database.Enabled {
		if recorder, err = a.newRecorder(cfg.Database, logger); err != nil {
			return nil, err
		}
	}

	a.writer = report.NewExcelWriter(cfg.Report.OutputPath, logger)
	a.pipeline = pipeline.New(
		policy.NewStore(document.NewReader(logger), logger),
		ingest.NewIngestor(extractor, logger),
		validation.NewValidator(logger),
		review.NewRouter(reviewer, cfg.Review.ReviewerName, logger),
		recorder,
		a.writer,
		pipeline.Options{CountApprovedAsAccepted: cfg.Report.CountApprovedAsAccepted},
		logger,
	)

	logger.Info("Setup completed",
		zap.Int("receipts", len(a.receipts)),
		zap.String("extractor", cfg.OCR.Extractor),
		zap.String("reviewer", cfg.Review.Mode),
		zap.Bool("ledger", cfg.Database.Enabled))

	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Cleanup failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) initTracing(cfg config.TracingConfig) error {
	var w io.Writer = os.Stdout
	if cfg.OutputPath != "" && cfg.OutputPath != "stdout" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open trace output: %w", err)
		}
		a.closers = append(a.closers, file.Close)
		w = file
	}

	shutdown, err := tracing.Init(cfg.ServiceName, Version, w)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, func() error {
		return shutdown(context.Background())
	})
	return nil
}

func newExtractor(cfg *config.Config, store *storage.ReceiptStore, logger *zap.Logger) (port.ReceiptExtractor, error) {
	if cfg.OCR.Extractor == config.ExtractorSidecar {
		return sidecar.NewExtractor(store, logger), nil
	}

	prompts := openai.DefaultPrompts()
	if cfg.OCR.PromptsPath != "" {
		loaded, err := openai.LoadPrompts(cfg.OCR.PromptsPath)
		if err != nil {
			return nil, err
		}
		prompts = loaded
	}

	return openai.NewReceiptExtractor(openai.ExtractorConfig{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
		Model:    cfg.OpenAI.Model,
		MaxPages: cfg.OCR.MaxPDFPages,
		Timeout:  cfg.OpenAI.Timeout,
		Prompts:  prompts,
	}, store, imaging.NewPDFRasterizer(logger), logger), nil
}

func (a *app) newReviewer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Reviewer, error) {
	if cfg.Review.Mode != config.ReviewModeHTTP {
		return console.NewReviewer(cfg.Review.ReviewerName, logger), nil
	}

	var notifier port.ReviewNotifier
	if cfg.Lark.Enabled {
		larkCfg := lark.Config{
			AppID:         cfg.Lark.AppID,
			AppSecret:     cfg.Lark.AppSecret,
			ReceiveIDType: cfg.Lark.ReceiveIDType,
			ReceiveID:     cfg.Lark.ReceiveID,
		}
		notifier = lark.NewNotifier(lark.NewSDKClient(larkCfg, logger), larkCfg, logger)
	}

	board := reviewhttp.NewBoard(notifier, logger)
	server := reviewhttp.NewServer(reviewhttp.ServerConfig{
		Host:         cfg.Review.HTTP.Host,
		Port:         cfg.Review.HTTP.Port,
		ReadTimeout:  cfg.Review.HTTP.ReadTimeout,
		WriteTimeout: cfg.Review.HTTP.WriteTimeout,
	}, board, Version, logger)

	if err := server.Listen(); err != nil {
		return nil, err
	}

	linkBase := cfg.Review.HTTP.PublicURL
	if linkBase == "" {
		linkBase = server.BaseURL()
	}
	board.WithLinkBase(linkBase)

	serveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan error, 1)
	go func() {
		err := server.Serve(serveCtx)
		if err != nil {
			board.Fail(err)
		}
		done <- err
	}()
	a.closers = append(a.closers, func() error {
		cancel()
		return <-done
	})

	logger.Info("Review board ready", zap.String("url", linkBase+"/api/v1/reviews"))
	return board, nil
}

func (a *app) newRecorder(cfg config.DatabaseConfig, logger *zap.Logger) (port.RunRecorder, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	if _, err := database.NewMigrator(db, logger).Migrate(context.Background(), migrations.FS); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	txManager := sqlite.NewDB(db.DB, logger)
	return ledger.NewRecorder(
		repository.NewRunRepository(txManager, logger),
		repository.NewExpenseRepository(txManager, logger),
		repository.NewHistoryRepository(txManager, logger),
		txManager,
		logger,
	), nil
}
