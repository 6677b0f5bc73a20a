package commands

import (
	"context"
	"fmt"
)

type ScanCmd struct {
	FailOnProblems bool `help:"Exit non-zero when problems are found" default:"true" negatable:""`
}

func (cmd *ScanCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := open(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if err := printJSON(globals.out(), report); err != nil {
		return err
	}
	if cmd.FailOnProblems && !report.Clean() {
		return fmt.Errorf("found %d problems", len(report.Problems))
	}
	return nil
}
