package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/buildproj/internal/eventstore"
	dberrors "git.home.luguber.info/inful/buildproj/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	RunID string `arg:"" optional:"" name:"run-id" help:"Show the stages of one run."`
	Limit int    `name:"limit" short:"n" default:"10" help:"Number of recent runs to list."`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global) error {
	if g.Config.EventsDB == "" {
		return dberrors.ConfigError("run journal is disabled; set --events-db or BUILDPROJ_EVENTS_DB").Build()
	}
	store, err := eventstore.NewSQLiteStore(g.path(g.Config.EventsDB))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if h.RunID != "" {
		run, err := eventstore.Run(ctx, store, h.RunID)
		if err != nil {
			return err
		}
		return printRun(g.Stdout, run)
	}

	runs, err := eventstore.History(ctx, store, h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(g.Stdout, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCOMMAND\tMODULE\tTOOLCHAIN\tSTATUS\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.BuildID, r.StartedAt.Format(time.DateTime), r.Command, r.Module, r.Toolchain, r.Status, r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func printRun(w io.Writer, r eventstore.RunSummary) error {
	fmt.Fprintf(w, "Run %s\n", r.BuildID)
	fmt.Fprintf(w, "  command:   %s\n", r.Command)
	fmt.Fprintf(w, "  module:    %s (%s, %s)\n", r.Module, r.Source, r.Toolchain)
	fmt.Fprintf(w, "  status:    %s (%s)\n", r.Status, r.FinalState)
	fmt.Fprintf(w, "  started:   %s\n", r.StartedAt.Format(time.DateTime))
	if r.Finished() {
		fmt.Fprintf(w, "  duration:  %s\n", r.Duration.Round(time.Millisecond))
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  error:     %s\n", r.Error)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  STAGE\tOUTCOME\tDURATION")
	for _, s := range r.Stages {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Stage, s.Outcome, s.Duration)
	}
	return tw.Flush()
}
