package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/pavelanni/selftest/internal/importer"
	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/store"
)

func TestSeedDemo(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	im, err := importer.New(db, afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("importer.New: %v", err)
	}
	ctx := context.Background()

	if err := seedDemo(ctx, db, im); err != nil {
		t.Fatalf("seedDemo: %v", err)
	}
	exam, err := db.GetExam(ctx, "demo.yaml")
	if err != nil || exam == nil {
		t.Fatalf("GetExam = %v, %v", exam, err)
	}
	if !exam.Protected || len(exam.Test) != 5 {
		t.Errorf("demo exam = protected %v, %d questions", exam.Protected, len(exam.Test))
	}
	types := map[model.QuestionType]bool{}
	for _, q := range exam.Test {
		types[q.Type] = true
	}
	if len(types) != 4 {
		t.Errorf("demo exam covers %d question types, want 4", len(types))
	}

	// A second run leaves the catalog alone.
	if err := seedDemo(ctx, db, im); err != nil {
		t.Fatalf("second seedDemo: %v", err)
	}
	if n, _ := db.ExamCount(ctx); n != 1 {
		t.Errorf("ExamCount = %d", n)
	}
}

func TestWriteTables(t *testing.T) {
	saved := time.Now().Add(-2 * time.Hour)

	var buf bytes.Buffer
	err := writeExams(&buf, []model.Exam{
		{Filename: "demo.yaml", Title: "Demo", Time: 5, Pass: 60, Protected: true, Test: make([]model.Question, 5)},
	})
	if err != nil {
		t.Fatalf("writeExams: %v", err)
	}
	if !strings.Contains(buf.String(), "demo.yaml *") || !strings.Contains(buf.String(), "60%") {
		t.Errorf("exams table:\n%s", buf.String())
	}

	buf.Reset()
	writeHistory(&buf, []model.Report{
		{Filename: "a.json", Date: saved, Score: 66.7, Status: model.StatusPass, Elapsed: 95},
	})
	if !strings.Contains(buf.String(), "66.7%") || !strings.Contains(buf.String(), "1:35") ||
		!strings.Contains(buf.String(), "2 hours ago") {
		t.Errorf("history table:\n%s", buf.String())
	}

	buf.Reset()
	writeSessions(&buf, []model.SessionRecord{
		{Filename: "a.json", SavedAt: saved, State: model.AttemptState{Question: 2, Time: 61, Marked: []int{0, 2}}},
	})
	line := strings.Split(strings.TrimSpace(buf.String()), "\n")[1]
	fields := strings.Fields(line)
	if fields[len(fields)-3] != "3" || fields[len(fields)-2] != "1:01" || fields[len(fields)-1] != "2" {
		t.Errorf("sessions row = %q", line)
	}
}

func TestOpenStoreLanguage(t *testing.T) {
	tests := []struct {
		lang    string
		wantErr bool
	}{
		{"fr", true},
		{"ru", false},
		{"en", false},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			v := viper.New()
			v.Set("db", ":memory:")
			v.Set("lang", tt.lang)
			db, err := openStore(v)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "en, ru") {
					t.Fatalf("openStore(%s) = %v, want unsupported language listing en, ru", tt.lang, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("openStore(%s): %v", tt.lang, err)
			}
			t.Cleanup(func() { db.Close() })
		})
	}
}
