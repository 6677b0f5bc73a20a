package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type ReconcileCmd struct {
	Team    ReconcileTeamCmd    `cmd:"" help:"Re-run the team cascade for a team id"`
	Orphans ReconcileOrphansCmd `cmd:"" help:"Remove assignments whose parent record is gone"`
}

type ReconcileTeamCmd struct {
	TeamID string `arg:"" help:"Team id, which may already be deleted"`
}

func (cmd *ReconcileTeamCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := open(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Engine.ReconcileTeam(ctx, cmd.TeamID)
	if res.Total() > 0 {
		s.Notifier.CollectionsChanged(ctx, res.Collections(), Actor)
	}
	if err != nil {
		return fmt.Errorf("failed to reconcile team %s: %w", cmd.TeamID, err)
	}
	log.Info().Str("team_id", cmd.TeamID).Int("deleted", res.Total()).Msg("Team reconciled")
	return printJSON(globals.out(), res)
}

type ReconcileOrphansCmd struct {
	DryRun bool `help:"Only report orphans" default:"false"`
}

func (cmd *ReconcileOrphansCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := open(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Engine.ReconcileOrphans(ctx, cmd.DryRun)
	if changed := report.Collections(); len(changed) > 0 {
		s.Notifier.CollectionsChanged(ctx, changed, Actor)
	}
	if err != nil {
		return fmt.Errorf("failed to reconcile orphans: %w", err)
	}
	log.Info().Int("orphans", len(report.Orphans)).Bool("dry_run", cmd.DryRun).Msg("Orphan scan finished")
	return printJSON(globals.out(), report)
}
