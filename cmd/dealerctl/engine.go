package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"dealer/internal/app"
	"dealer/internal/platform/config"
	"dealer/internal/platform/logger"
	"dealer/internal/platform/postgres"
	dErrors "dealer/pkg/domain-errors"
	"dealer/pkg/requestcontext"
)

// cliEnv is the loaded configuration plus a stderr logger.
type cliEnv struct {
	cfg config.Config
	log *slog.Logger
}

func loadEnv() (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &cliEnv{cfg: cfg, log: logger.NewWithWriter(os.Stderr, cfg.Log)}, nil
}

// withEngine builds the engine, migrates a PostgreSQL schema and runs fn
// with the actor attached to ctx.
func withEngine(ctx context.Context, actor string, fn func(ctx context.Context, env *cliEnv, e *app.Engine) error) subcommands.ExitStatus {
	env, err := loadEnv()
	if err != nil {
		return fail(err)
	}
	if env.cfg.Database.URL == "" {
		env.log.Warn("DATABASE_URL not set; using the in-memory backend, state is discarded on exit")
	}

	engine, err := app.Build(ctx, env.cfg, env.log, app.Options{})
	if err != nil {
		return fail(err)
	}
	defer engine.Close()

	if engine.DB != nil {
		if _, err := postgres.Migrate(ctx, engine.DB); err != nil {
			return fail(err)
		}
	}

	if actor != "" {
		ctx = requestcontext.WithActor(ctx, actor)
	}
	if err := fn(ctx, env, engine); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// fail prints domain errors as "code: message"; anything else verbatim.
func fail(err error) subcommands.ExitStatus {
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", code, dErrors.MessageOf(err))
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return subcommands.ExitFailure
}
