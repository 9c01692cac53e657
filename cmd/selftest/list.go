package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/report"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list exams|history|sessions",
		Short:     "List stored exams, completed attempts or saved sessions",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"exams", "history", "sessions"},
		RunE:      runList,
	}
	addCommonFlags(cmd)
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	switch args[0] {
	case "exams":
		exams, err := db.ListExams(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, appI18n.Tp(ctx, "ExamsAvailable", len(exams)))
		if len(exams) == 0 {
			fmt.Fprintln(out, appI18n.T(ctx, "NothingToShow"))
			return nil
		}
		return writeExams(out, exams)
	case "history":
		history, err := db.ListHistory(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, appI18n.Tp(ctx, "HistoryEntries", len(history)))
		if len(history) == 0 {
			fmt.Fprintln(out, appI18n.T(ctx, "NothingToShow"))
			return nil
		}
		return writeHistory(out, history)
	default:
		sessions, err := db.ListSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, appI18n.Tp(ctx, "SavedSessions", len(sessions)))
		if len(sessions) == 0 {
			fmt.Fprintln(out, appI18n.T(ctx, "NothingToShow"))
			return nil
		}
		return writeSessions(out, sessions)
	}
}

func writeExams(out io.Writer, exams []model.Exam) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tTITLE\tQUESTIONS\tMINUTES\tPASS")
	for i, e := range exams {
		name := e.Filename
		if e.Protected {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d%%\n", i, name, e.Title, len(e.Test), e.Time, e.Pass)
	}
	return tw.Flush()
}

func writeHistory(out io.Writer, history []model.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tTAKEN\tSCORE\tSTATUS\tTIME")
	for i, r := range history {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s%%\t%s\t%s\n", i, r.Filename, humanize.Time(r.Date),
			humanize.FtoaWithDigits(r.Score, 1), r.Status, report.Elapsed(r.Elapsed))
	}
	return tw.Flush()
}

func writeSessions(out io.Writer, sessions []model.SessionRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFILE\tSAVED\tQUESTION\tREMAINING\tBOOKMARKS")
	for i, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\n", i, s.Filename, humanize.Time(s.SavedAt),
			s.State.Question+1, report.Elapsed(s.State.Time), len(s.State.Marked))
	}
	return tw.Flush()
}
