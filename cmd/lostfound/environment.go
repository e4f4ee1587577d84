package main

import (
	"log/slog"

	"github.com/poiesic/lostfound"
	"github.com/poiesic/lostfound/config"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/notify"
	"github.com/poiesic/lostfound/report"
)

// openDatabase and newMailer are replaced in tests.
var (
	openDatabase = func(cfg *config.Config, logger *slog.Logger) (*lostfound.Database, error) {
		return lostfound.NewDatabase(cfg.Database.Path,
			lostfound.WithAIConfig(cfg.Embedding.AIConfig()),
			lostfound.WithLogger(logger),
		)
	}

	newMailer = func(cfg *config.Config, logger *slog.Logger) (notify.Mailer, error) {
		return notify.NewSMTPMailer(cfg.SMTP.MailerConfig(), logger)
	}
)

// environment is everything a command needs, built from the configuration.
type environment struct {
	cfg      *config.Config
	db       *lostfound.Database
	notifier *notify.Notifier
	reporter *report.Reporter
	logger   *slog.Logger
}

func openEnvironment(cfg *config.Config) (*environment, error) {
	logger := slog.Default()

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	env := &environment{cfg: cfg, db: db, logger: logger}

	matcher, err := db.NewSemanticMatcher(
		match.WithSemanticThreshold(cfg.Matching.SemanticThreshold),
		match.WithLogger(logger),
	)
	if err != nil {
		env.Close()
		return nil, err
	}

	opts := []report.Option{report.WithLogger(logger)}
	if cfg.SMTP.Enabled {
		mailer, err := newMailer(cfg, logger)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.notifier, err = db.NewNotifier(mailer, cfg.Notify.Options(cfg.Matching.CoarseThreshold, logger)...)
		if err != nil {
			env.Close()
			return nil, err
		}
		opts = append(opts, report.WithNotifier(env.notifier))
	}

	env.reporter, err = db.NewReporter(matcher, opts...)
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *environment) Close() error {
	if e.notifier != nil {
		e.notifier.Release()
	}
	return e.db.Close()
}
