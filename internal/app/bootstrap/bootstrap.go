package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	agendaservice "openknesset/contexts/civic-data/agenda-service"
	agendapostgres "openknesset/contexts/civic-data/agenda-service/adapters/postgres"
	notificationservice "openknesset/contexts/civic-data/notification-service"
	notifypostgres "openknesset/contexts/civic-data/notification-service/adapters/postgres"
	"openknesset/contexts/civic-data/notification-service/adapters/smtp"
	"openknesset/contexts/civic-data/notification-service/adapters/templates"
	"openknesset/internal/platform/config"
	"openknesset/internal/platform/db"
	"openknesset/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

// NotifierApp runs one notification digest pass and exits; scheduling is
// left to cron.
type NotifierApp struct {
	digest   notificationservice.Module
	postgres *db.Postgres
	logger   *slog.Logger
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

	repo := agendapostgres.NewRepository(pg.DB, logger)
	module := agendaservice.NewModule(agendaservice.Dependencies{
		Agendas:     repo,
		AgendaVotes: repo,
		Profiles:    repo,
		Votes:       repo,
		Rankings:    repo,
		Clock:       agendapostgres.SystemClock{},
		IDGenerator: agendapostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildNotifier() (*NotifierApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "notify")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := notifypostgres.NewRepository(pg.DB, logger)
	module := notificationservice.NewModule(notificationservice.Dependencies{
		Users:    repo,
		Profiles: repo,
		Follows:  repo,
		Actions:  repo,
		LastSent: repo,
		Renderer: templates.NewRenderer(cfg.SiteDomain),
		Mailer: smtp.NewMailer(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUsername,
			cfg.SMTPPassword,
			cfg.FromEmail,
			logger,
		),
		Clock:    notifypostgres.SystemClock{},
		DaysBack: cfg.NotificationDaysBack,
		Subject:  cfg.NotificationSubject,
		Logger:   logger,
	})

	return &NotifierApp{
		digest:   module,
		postgres: pg,
		logger:   logger,
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
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run executes one digest pass and returns the number of emails queued.
func (n *NotifierApp) Run(ctx context.Context) (int, error) {
	n.logger.Info("notifier app started",
		"event", "bootstrap_notifier_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return n.digest.Digest.Run(ctx)
}

func (n *NotifierApp) Close() error {
	if n.postgres != nil {
		return n.postgres.Close()
	}
	return nil
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
