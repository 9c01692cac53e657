package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/selftest/internal/model"
)

// ExportHistory builds export-ready results for every stored report, joined
// with the exam each was taken from when it still exists.
func (s *Store) ExportHistory(ctx context.Context) (model.HistoryExport, error) {
	history, err := s.ListHistory(ctx)
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list history: %w", err)
	}
	exams, err := s.ListExams(ctx)
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list exams: %w", err)
	}
	byName := make(map[string]*model.Exam, len(exams))
	for i := range exams {
		byName[exams[i].Filename] = &exams[i]
	}

	out := model.HistoryExport{
		ExportedAt: time.Now().UTC(),
		Count:      len(history),
		Results:    make([]model.ReportExport, 0, len(history)),
	}
	for _, r := range history {
		out.Results = append(out.Results, model.NewReportExport(r, byName[r.Filename]))
	}
	return out, nil
}
