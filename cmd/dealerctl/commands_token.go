package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	jwttoken "dealer/internal/jwt_token"
)

// tokenCmd mints a bearer token for local testing of the HTTP API.
type tokenCmd struct {
	subject string
	roles   string
	ttl     time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a bearer token for the HTTP API" }
func (*tokenCmd) Usage() string {
	return `dealerctl token -sub <actor> [-roles seller,admin] [-ttl 1h]

  Signs with JWT_SIGNING_KEY. Cancelling sales and reading the audit log
  require the admin role.
`
}

func (t *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.subject, "sub", "", "Actor name stored on audit rows.")
	f.StringVar(&t.roles, "roles", "seller", "Comma separated roles.")
	f.DurationVar(&t.ttl, "ttl", time.Hour, "Token lifetime.")
}

func (t *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(t.subject) == "" {
		return fail(fmt.Errorf("-sub is required"))
	}
	env, err := loadEnv()
	if err != nil {
		return fail(err)
	}
	var roles []string
	for _, r := range strings.Split(t.roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	svc := jwttoken.NewJWTService(env.cfg.Server.JWTSigningKey, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	token, err := svc.GenerateAccessToken(t.subject, roles, t.ttl)
	if err != nil {
		return fail(err)
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
