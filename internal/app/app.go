package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"changal24/internal/config"
	"changal24/internal/draft"
	"changal24/internal/infrastructure/enrich"
	"changal24/internal/infrastructure/llm"
	"changal24/internal/infrastructure/scheduler"
	"changal24/internal/infrastructure/storage"
	"changal24/internal/infrastructure/telegram"
	"changal24/internal/logging"
	"changal24/internal/scoring"
	"changal24/internal/server"
	"changal24/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	repository *storage.SQLiteRepository
	intake     *usecase.Intake
	publish    *usecase.Publish
	api        *server.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repository, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open post store: %w", err)
	}

	rules := draft.UzbekRules()

	source := telegram.NewChannelSource(cfg.Source.ChannelURL, nil, baseLogger.With("component", "source"))
	enricher := enrich.NewArticleEnricher(nil, baseLogger.With("component", "enrich"))
	localizer := llm.NewClient(cfg.Generation, rules, baseLogger.With("component", "llm"))
	messenger := telegram.NewNotifier(cfg.Delivery.BotToken)

	intake := usecase.NewIntake(usecase.IntakeDeps{
		Source:     source,
		Enricher:   enricher,
		Repository: repository,
		Scoring:    scoring.LoadConfig(),
		Logger:     baseLogger.With("component", "intake"),
	})

	publish := usecase.NewPublish(usecase.PublishDeps{
		Repository: repository,
		Localizer:  localizer,
		Messenger:  messenger,
		Brand:      cfg.Delivery.Brand,
		Target:     cfg.Delivery.Target,
		Logger:     baseLogger.With("component", "publish"),
	})

	api := server.New(cfg.Server.Addr, repository, baseLogger.With("component", "server"))

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		repository: repository,
		intake:     intake,
		publish:    publish,
		api:        api,
	}, nil
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.repository.Close()
}

// RunIntake performs a single intake pass.
func (a *Application) RunIntake(ctx context.Context) error {
	if err := a.cfg.ValidateIntake(); err != nil {
		return err
	}
	return a.intake.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// RunPublish performs a single publish pass.
func (a *Application) RunPublish(ctx context.Context) error {
	if err := a.cfg.ValidatePublish(); err != nil {
		return err
	}
	return a.publish.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// Serve runs the read-only API until the context is canceled.
func (a *Application) Serve(ctx context.Context) error {
	a.logger.Info("api listening", "addr", a.cfg.Server.Addr)
	return a.api.ListenAndServe(ctx)
}

// Run schedules both jobs on their cron expressions and serves the API until
// the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.cfg.ValidateIntake(); err != nil {
		return err
	}
	if err := a.cfg.ValidatePublish(); err != nil {
		return err
	}

	location := a.cfg.Scheduler.Location()
	intakeCron := scheduler.NewCronScheduler(a.cfg.Scheduler.IntakeCron, location)
	publishCron := scheduler.NewCronScheduler(a.cfg.Scheduler.PublishCron, location)

	if err := intakeCron.Start(ctx, func(at time.Time) {
		if err := a.intake.Run(ctx, at); err != nil {
			a.logger.Error("intake run failed", "error", err)
		}
	}); err != nil {
		return err
	}
	if err := publishCron.Start(ctx, func(at time.Time) {
		if err := a.publish.Run(ctx, at); err != nil {
			a.logger.Error("publish run failed", "error", err)
		}
	}); err != nil {
		return err
	}

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = intakeCron.Stop(stopCtx)
		_ = publishCron.Stop(stopCtx)
	}()

	return a.Serve(ctx)
}
