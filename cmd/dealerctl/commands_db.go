package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"dealer/internal/app"
	"dealer/internal/platform/postgres"
	platformredis "dealer/internal/platform/redis"
	"dealer/internal/seed"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string           { return "migrate" }
func (*migrateCmd) Synopsis() string       { return "apply pending schema migrations" }
func (*migrateCmd) SetFlags(*flag.FlagSet) {}
func (*migrateCmd) Usage() string {
	return `dealerctl migrate

  Applies the embedded SQL migrations to DATABASE_URL. Already applied
  migrations are skipped.
`
}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := loadEnv()
	if err != nil {
		return fail(err)
	}
	if env.cfg.Database.URL == "" {
		return fail(errors.New("DATABASE_URL is required"))
	}
	db, err := postgres.Open(ctx, env.cfg.Database)
	if err != nil {
		return fail(err)
	}
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		return fail(err)
	}
	if len(applied) == 0 {
		fmt.Println("schema is up to date")
		return subcommands.ExitSuccess
	}
	for _, name := range applied {
		fmt.Println("applied", name)
	}
	return subcommands.ExitSuccess
}

type pingCmd struct {
	timeout time.Duration
}

func (*pingCmd) Name() string     { return "ping-db" }
func (*pingCmd) Synopsis() string { return "check database and cache connectivity" }
func (*pingCmd) Usage() string {
	return `dealerctl ping-db [-timeout 5s]
`
}

func (p *pingCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&p.timeout, "timeout", 5*time.Second, "How long to wait for each backend.")
}

func (p *pingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env, err := loadEnv()
	if err != nil {
		return fail(err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if env.cfg.Database.URL == "" {
		fmt.Println("database: not configured (memory backend)")
	} else {
		start := time.Now()
		db, err := postgres.Open(ctx, env.cfg.Database)
		if err != nil {
			return fail(err)
		}
		db.Close()
		fmt.Printf("database: ok (%s)\n", time.Since(start).Round(time.Millisecond))
	}

	if env.cfg.Redis.URL == "" {
		fmt.Println("redis: not configured")
	} else {
		rc, err := platformredis.New(ctx, env.cfg.Redis)
		if err != nil {
			return fail(err)
		}
		defer rc.Close()
		fmt.Println("redis: ok")
	}
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (*seedCmd) Name() string { return "seed-demo" }
func (*seedCmd) Synopsis() string {
	return "load demo clients, employees, payment methods and vehicles"
}
func (*seedCmd) SetFlags(*flag.FlagSet) {}
func (*seedCmd) Usage() string {
	return `dealerctl seed-demo

  Seeding is idempotent: records that already exist are left untouched.
`
}

func (*seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEngine(ctx, "", func(ctx context.Context, env *cliEnv, e *app.Engine) error {
		res, err := seed.Demo(ctx, e.Directory, e.Vehicles, time.Now().UTC(), env.log)
		if err != nil {
			return err
		}
		fmt.Printf("created %d, already present %d\n", res.Created, res.Existing)
		for _, c := range res.Clients {
			fmt.Println("client        ", c)
		}
		for _, emp := range res.Employees {
			fmt.Println("employee      ", emp)
		}
		for _, m := range res.PaymentMethods {
			fmt.Println("payment method", m)
		}
		for _, v := range res.Vehicles {
			fmt.Println("vehicle       ", v)
		}
		return nil
	})
}
