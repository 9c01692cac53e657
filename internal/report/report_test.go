package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/model"
)

func TestWrite(t *testing.T) {
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	date := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	exam := &model.Exam{
		Filename: "go.json",
		Title:    "Go basics",
		Pass:     50,
		Test: []model.Question{
			{Type: model.MultipleChoice, Text: "Zero value of int?", Explanation: "Numbers start at 0.",
				Choices: []model.Choice{{Text: "0", Correct: true}, {Text: "nil"}}},
			{Type: model.FillIn, Text: "Straße?", Choices: []model.Choice{{Text: "street"}}},
		},
	}
	r := model.Report{
		ID: "r1", Filename: "go.json", Title: "Go basics", Date: date, TestLength: 2,
		Correct: []bool{true, false}, Incorrect: []int{}, Incomplete: []int{1},
		Score: 50, Status: model.StatusPass, Elapsed: 125,
		Answers: [][]bool{{true, false}, {false}}, FillIns: []string{"", ""}, Orders: [][]int{{}, {}},
	}
	opts := Options{Now: func() time.Time { return date.Add(48 * time.Hour) }}

	tests := []struct {
		name string
		exam *model.Exam
	}{
		{"with exam", exam},
		{"exam deleted", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(context.Background(), &buf, r, tt.exam, opts); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
				t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(buf.Len(), 16)])
			}
		})
	}
}

func TestWriteMissingFont(t *testing.T) {
	appI18n.Init("en")
	var buf bytes.Buffer
	err := Write(context.Background(), &buf, model.Report{TestLength: 0}, nil, Options{FontPath: "/nonexistent/font.ttf"})
	if err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{65, "1:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{7325, "2:02:05"},
	}
	for _, tt := range tests {
		if got := Elapsed(tt.in); got != tt.want {
			t.Errorf("Elapsed(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
