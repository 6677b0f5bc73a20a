package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/jwalitptl/rota-api/cmd/rotactl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool                  `help:"Enable debug mode."`
		Config    string                `help:"Path to config.yml." type:"path" env:"ROTA_CONFIG_FILE"`
		Version   kong.VersionFlag
		Reconcile commands.ReconcileCmd `cmd:"" help:"Repair assignment records left behind by failed cascades"`
		Scan      commands.ScanCmd      `cmd:"" help:"Report malformed and duplicate records"`
		Week      commands.WeekCmd      `cmd:"" help:"Inspect team rotas"`
		Token     commands.TokenCmd     `cmd:"" help:"Generate a JWT identifying an actor"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("rotactl"),
		kong.Description("Operator tooling for the rota store."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Config: cli.Config})
	cmd.FatalIfErrorf(err)
}
