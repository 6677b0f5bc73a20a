package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jwalitptl/rota-api/internal/model"
	"github.com/jwalitptl/rota-api/internal/service/rota"
)

type WeekCmd struct {
	Show WeekShowCmd `cmd:"" help:"Print the resolved rota of a team week"`
}

type WeekShowCmd struct {
	TeamID string `arg:"" help:"Team id"`
	WeekID string `arg:"" help:"ISO week, e.g. 2024-W3. Defaults to the current week" optional:""`
	JSON   bool   `help:"Print the full schedule as JSON"`
}

func (cmd *WeekShowCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := open(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	week := cmd.WeekID
	if week == "" {
		week = model.WeekIDFor(time.Now()).String()
	}

	view, err := s.Rota.View(ctx, cmd.TeamID, week)
	if err != nil {
		return err
	}
	if cmd.JSON {
		return printJSON(globals.out(), view)
	}
	return printWeek(globals.out(), view)
}

func printWeek(out io.Writer, view *rota.WeekView) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tteam %s\t%s\n", view.WeekID, view.TeamID, view.Status)

	header := append([]string{"STAFF"}, view.Days...)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		cols := []string{row.Name}
		for _, cells := range row.Days {
			names := make([]string, 0, len(cells))
			for _, c := range cells {
				names = append(names, c.LocationName)
			}
			if len(names) == 0 {
				names = append(names, "-")
			}
			cols = append(cols, strings.Join(names, ", "))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	return w.Flush()
}
