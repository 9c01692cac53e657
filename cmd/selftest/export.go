package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/report"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed attempts as JSON or one attempt as PDF",
		RunE:  runExport,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.String("format", "json", "Output format (json, pdf)")
	f.Int("index", -1, "History entry to export (pdf only)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("font", "", "TTF font for PDF text outside Latin-1")
	f.String("bold-font", "", "Bold TTF font for PDF headings")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	format := v.GetString("format")
	if format != "json" && format != "pdf" {
		return fmt.Errorf("unknown format %q, want json or pdf", format)
	}

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "pdf" {
		history, err := db.ListHistory(ctx)
		if err != nil {
			return err
		}
		i := v.GetInt("index")
		if i < 0 || i >= len(history) {
			return fmt.Errorf("--index must be between 0 and %d", len(history)-1)
		}
		r := history[i]
		exam, err := db.GetExam(ctx, r.Filename)
		if err != nil {
			return err
		}
		if exam == nil {
			slog.Warn("exam definition deleted, exporting scores only", "filename", r.Filename)
		}
		return report.Write(ctx, w, r, exam, report.Options{
			FontPath:     v.GetString("font"),
			BoldFontPath: v.GetString("bold-font"),
		})
	}

	export, err := db.ExportHistory(ctx)
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	if outPath != "" && outPath != "-" {
		fmt.Fprintln(os.Stderr, appI18n.Td(ctx, "HistoryExported", map[string]any{"Count": export.Count, "Path": outPath}))
	}
	return nil
}
