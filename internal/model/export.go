package model

import (
	"strings"
	"time"
)

// HistoryExport is the top-level JSON structure for history export.
type HistoryExport struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Results    []ReportExport `json:"results"`
}

// ReportExport holds one completed attempt for export.
type ReportExport struct {
	ID         string           `json:"id"`
	Filename   string           `json:"filename"`
	Title      string           `json:"title"`
	Date       time.Time        `json:"date"`
	Score      float64          `json:"score"`
	Status     ReportStatus     `json:"status"`
	Elapsed    int              `json:"elapsed_seconds"`
	Questions  []QuestionResult `json:"questions"`
	Incorrect  []int            `json:"incorrect"`
	Incomplete []int            `json:"incomplete"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Correct     bool         `json:"correct"`
	Answered    bool         `json:"answered"`
	Answer      string       `json:"answer,omitempty"`
	Seconds     int          `json:"seconds"`
	Explanation string       `json:"explanation,omitempty"`
}

// NewReportExport joins a report with the exam it was taken from. The exam
// may be nil when its definition has been deleted since.
func NewReportExport(r Report, exam *Exam) ReportExport {
	out := ReportExport{
		ID:         r.ID,
		Filename:   r.Filename,
		Title:      r.Title,
		Date:       r.Date,
		Score:      r.Score,
		Status:     r.Status,
		Elapsed:    r.Elapsed,
		Incorrect:  r.Incorrect,
		Incomplete: r.Incomplete,
	}
	incomplete := make(map[int]bool, len(r.Incomplete))
	for _, i := range r.Incomplete {
		incomplete[i] = true
	}
	for i := 0; i < r.TestLength; i++ {
		qr := QuestionResult{
			Correct:  i < len(r.Correct) && r.Correct[i],
			Answered: !incomplete[i],
		}
		if i < len(r.Intervals) {
			qr.Seconds = r.Intervals[i]
		}
		if exam != nil && i < len(exam.Test) {
			qr.Text = exam.Test[i].Text
			qr.Type = exam.Test[i].Type
			qr.Explanation = exam.Test[i].Explanation
			qr.Answer = r.AnswerText(exam.Test[i], i)
		}
		out.Questions = append(out.Questions, qr)
	}
	return out
}

// AnswerText renders the answer recorded for question i in plain text. q is
// the question definition the report was scored against.
func (r Report) AnswerText(q Question, i int) string {
	switch q.Type {
	case FillIn:
		if i < len(r.FillIns) {
			return r.FillIns[i]
		}
	case Ordering:
		if i >= len(r.Orders) {
			return ""
		}
		var parts []string
		for _, idx := range r.Orders[i] {
			if idx >= 0 && idx < len(q.Choices) {
				parts = append(parts, q.Choices[idx].Text)
			}
		}
		return strings.Join(parts, " -> ")
	default:
		if i >= len(r.Answers) {
			return ""
		}
		var parts []string
		for j, picked := range r.Answers[i] {
			if picked && j < len(q.Choices) {
				parts = append(parts, q.Choices[j].Text)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
