package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/rota-api/internal/config"
	"github.com/jwalitptl/rota-api/pkg/auth"
)

// TokenCmd mints a bearer token whose subject becomes the audit actor of
// API requests.
type TokenCmd struct {
	Subject string        `arg:"" help:"Actor id to embed as the sub claim"`
	TTL     time.Duration `help:"Token lifetime, 0 for no expiry" default:"24h"`
}

func (cmd *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return err
	}
	token, err := auth.Issue(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}, cmd.Subject, cmd.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(globals.out(), token)
	return err
}
