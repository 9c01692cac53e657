// Package report renders a completed attempt as a PDF document.
package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/model"
)

const family = "Body"

// Options configures the fonts used for the document. The built-in
// Helvetica covers Latin-1 only; set FontPath to a TTF file for other
// scripts such as Cyrillic.
type Options struct {
	FontPath     string
	BoldFontPath string
	// Now is used for relative dates. Defaults to time.Now.
	Now func() time.Time
}

// Write renders report r as PDF to w. Labels are translated with the
// localizer in ctx. exam may be nil when its definition has been deleted.
func Write(ctx context.Context, w io.Writer, r model.Report, exam *model.Exam, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	font := "Helvetica"
	tr := func(s string) string { return s }
	if opts.FontPath != "" {
		bold := opts.BoldFontPath
		if bold == "" {
			bold = opts.FontPath
		}
		pdf.AddUTF8Font(family, "", opts.FontPath)
		pdf.AddUTF8Font(family, "B", bold)
		font = family
	} else {
		// cp1252
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	setFont := func(style string, size float64) {
		pdf.SetFont(font, style, size)
	}

	title := r.Title
	if title == "" {
		title = r.Filename
	}
	pdf.SetTitle(title, true)
	pdf.AddPage()

	setFont("B", 16)
	pdf.MultiCell(0, 10, tr(appI18n.T(ctx, "ReportTitle")+": "+title), "", "L", false)
	pdf.Ln(2)

	pass := 0
	if exam != nil {
		pass = exam.Pass
	}
	status := appI18n.T(ctx, "StatusFail")
	if r.Status == model.StatusPass {
		status = appI18n.T(ctx, "StatusPass")
	}
	summary := []string{
		appI18n.Td(ctx, "ReportDate", map[string]any{
			"When": r.Date.Format("2006-01-02 15:04") + " (" + humanize.RelTime(r.Date, now(), "ago", "from now") + ")",
		}),
		appI18n.Td(ctx, "ReportScore", map[string]any{
			"Score": humanize.FtoaWithDigits(r.Score, 1),
			"Pass":  pass,
		}) + " " + status,
		appI18n.Td(ctx, "ReportElapsed", map[string]any{"Elapsed": Elapsed(r.Elapsed)}),
	}
	setFont("", 12)
	pdf.MultiCell(0, 7, tr(strings.Join(summary, "\n")), "", "L", false)
	pdf.Ln(4)

	for i := 0; i < r.TestLength; i++ {
		setFont("B", 12)
		header := appI18n.Td(ctx, "ReportQuestion", map[string]any{"N": i + 1}) + " - " + questionStatus(ctx, r, i)
		pdf.MultiCell(0, 7, tr(header), "", "L", false)

		setFont("", 11)
		if exam != nil && i < len(exam.Test) {
			q := exam.Test[i]
			pdf.MultiCell(0, 6, tr(q.Text), "", "L", false)
			if answer := r.AnswerText(q, i); answer != "" {
				pdf.MultiCell(0, 6, tr("> "+answer), "", "L", false)
			}
			if q.Explanation != "" {
				pdf.SetTextColor(90, 90, 90)
				pdf.MultiCell(0, 6, tr(q.Explanation), "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func questionStatus(ctx context.Context, r model.Report, i int) string {
	switch {
	case i < len(r.Correct) && r.Correct[i]:
		return appI18n.T(ctx, "ReportCorrect")
	case slices.Contains(r.Incomplete, i):
		return appI18n.T(ctx, "ReportIncomplete")
	default:
		return appI18n.T(ctx, "ReportIncorrect")
	}
}

// Elapsed formats a number of seconds as m:ss, or h:mm:ss from an hour up.
func Elapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
