package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/app"
	"github.com/jwalitptl/rota-api/internal/config"
	"github.com/jwalitptl/rota-api/pkg/logger"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/messaging/redis"
)

// Actor stamps every change made from the command line.
const Actor = "rotactl"

type Globals struct {
	Debug   bool
	Version string
	Config  string

	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// session is an opened application plus the broker used to tell running
// servers about removed records.
type session struct {
	*app.App
	broker messaging.Broker
}

func (s *session) Close() {
	if err := s.App.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
	if s.broker != nil {
		s.broker.Close()
	}
}

func open(ctx context.Context, globals *Globals) (*session, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if globals.Debug {
		level = logger.DebugLevel
	}
	log.Logger = logger.NewLogger(&logger.Config{Level: level, Output: os.Stderr, Pretty: true}).Zerolog()
	zerolog.DefaultContextLogger = &log.Logger

	if cfg.Database.Driver == "memory" {
		log.Warn().Msg("database driver is memory; commands operate on an empty store")
	}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		rb, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
		}, &log.Logger)
		if err != nil {
			return nil, err
		}
		broker = rb
	}

	a, err := app.New(ctx, cfg, prometheus.NewRegistry(), broker)
	if err != nil {
		if broker != nil {
			broker.Close()
		}
		return nil, err
	}
	return &session{App: a, broker: broker}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
