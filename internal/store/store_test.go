package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/pavelanni/selftest/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testExam(filename string) model.Exam {
	return model.Exam{
		Filename: filename,
		Title:    "Exam " + filename,
		Time:     10,
		Pass:     70,
		Test: []model.Question{
			{Type: model.MultipleChoice, Text: "2+2?", Choices: []model.Choice{
				{Text: "3"}, {Text: "4", Correct: true},
			}},
			{Type: model.FillIn, Text: "Capital of France?", Choices: []model.Choice{{Text: "Paris"}}},
		},
	}
}

func insertTestExam(t *testing.T, s *Store, filename string) model.Exam {
	t.Helper()
	exam := testExam(filename)
	if err := s.SaveExam(context.Background(), exam); err != nil {
		t.Fatalf("insertTestExam: %v", err)
	}
	return exam
}

func TestExamCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Empty DB should return zero count and empty list.
	count, err := s.ExamCount(ctx)
	if err != nil {
		t.Fatalf("ExamCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 exams, got %d", count)
	}
	list, err := s.ListExams(ctx)
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	want := insertTestExam(t, s, "b.json")
	insertTestExam(t, s, "a.json")

	got, err := s.GetExam(ctx, "b.json")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, want) {
		t.Errorf("GetExam = %+v, want %+v", got, want)
	}

	// Not found.
	missing, err := s.GetExam(ctx, "nope.json")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing exam, got %v, %v", missing, err)
	}

	// Insertion order is kept.
	list, err = s.ListExams(ctx)
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(list) != 2 || list[0].Filename != "b.json" || list[1].Filename != "a.json" {
		t.Errorf("unexpected exam order: %+v", list)
	}

	// Saving again replaces the exam in place.
	want.Title = "Renamed"
	if err := s.SaveExam(ctx, want); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}
	list, _ = s.ListExams(ctx)
	if len(list) != 2 || list[0].Title != "Renamed" {
		t.Errorf("expected replaced exam first, got %+v", list)
	}
}

func TestSaveExplanation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestExam(t, s, "a.json")

	if err := s.SaveExplanation(ctx, "a.json", 1, "Paris is the capital."); err != nil {
		t.Fatalf("SaveExplanation: %v", err)
	}
	exam, err := s.GetExam(ctx, "a.json")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if exam.Test[1].Explanation != "Paris is the capital." {
		t.Errorf("explanation = %q", exam.Test[1].Explanation)
	}
	if exam.Test[0].Explanation != "" {
		t.Errorf("other question changed: %q", exam.Test[0].Explanation)
	}

	if err := s.SaveExplanation(ctx, "a.json", 5, "x"); err == nil {
		t.Error("expected error for missing question")
	}
	if err := s.SaveExplanation(ctx, "nope.json", 0, "x"); err == nil {
		t.Error("expected error for missing exam")
	}
}

func TestHistoryAndSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	history := []model.Report{
		{ID: "r1", Filename: "a.json", Date: date, TestLength: 2, Correct: []bool{true, false},
			Incorrect: []int{}, Incomplete: []int{1}, Score: 50, Status: model.StatusFail,
			Intervals: []int{3, 0}, Answers: [][]bool{{false, true}, {false}}, FillIns: []string{"", ""},
			Orders: [][]int{{}, {}}},
		{ID: "r2", Filename: "b.json", Date: date, TestLength: 1, Correct: []bool{true},
			Incorrect: []int{}, Incomplete: []int{}, Score: 100, Status: model.StatusPass},
	}
	if err := s.SaveHistory(ctx, history); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got, err := s.ListHistory(ctx)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if !reflect.DeepEqual(got, history) {
		t.Errorf("history round trip:\n got %+v\nwant %+v", got, history)
	}

	// Saving replaces the whole list.
	if err := s.SaveHistory(ctx, history[1:]); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got, _ = s.ListHistory(ctx)
	if len(got) != 1 || got[0].ID != "r2" {
		t.Errorf("expected only r2, got %+v", got)
	}

	sessions := []model.SessionRecord{
		{ID: "s1", Filename: "a.json", Title: "A", SavedAt: date, State: model.AttemptState{
			Answers: [][]bool{{true, false}, {false}}, FillIns: []string{"", ""}, Orders: [][]int{{}, {}},
			Marked: []int{1}, Intervals: []int{4, 1}, Time: 595, Question: 1, ExamMode: model.BookmarkedOnly,
		}},
	}
	if err := s.SaveSessions(ctx, sessions); err != nil {
		t.Fatalf("SaveSessions: %v", err)
	}
	gotSessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if !reflect.DeepEqual(gotSessions, sessions) {
		t.Errorf("sessions round trip:\n got %+v\nwant %+v", gotSessions, sessions)
	}

	if err := s.SaveSessions(ctx, nil); err != nil {
		t.Fatalf("SaveSessions(nil): %v", err)
	}
	gotSessions, _ = s.ListSessions(ctx)
	if len(gotSessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(gotSessions))
	}
}

func TestDeleteExamCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestExam(t, s, "a.json")
	insertTestExam(t, s, "b.json")

	s.SaveHistory(ctx, []model.Report{{ID: "r1", Filename: "a.json"}, {ID: "r2", Filename: "b.json"}})
	s.SaveSessions(ctx, []model.SessionRecord{{ID: "s1", Filename: "a.json"}})

	ok, err := s.DeleteExam(ctx, "a.json")
	if err != nil || !ok {
		t.Fatalf("DeleteExam = %v, %v", ok, err)
	}
	exams, _ := s.ListExams(ctx)
	if len(exams) != 1 || exams[0].Filename != "b.json" {
		t.Errorf("exams = %+v", exams)
	}
	history, _ := s.ListHistory(ctx)
	if len(history) != 1 || history[0].ID != "r2" {
		t.Errorf("history = %+v", history)
	}
	sessions, _ := s.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("sessions = %+v", sessions)
	}

	ok, err = s.DeleteExam(ctx, "a.json")
	if err != nil || ok {
		t.Errorf("second DeleteExam = %v, %v; want false, nil", ok, err)
	}
}

func TestSeedDemo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	demo := testExam("demo.json")

	seeded, err := s.SeedDemo(ctx, demo)
	if err != nil || !seeded {
		t.Fatalf("SeedDemo = %v, %v", seeded, err)
	}
	exam, _ := s.GetExam(ctx, "demo.json")
	if exam == nil || !exam.Protected {
		t.Fatalf("demo exam not stored as protected: %+v", exam)
	}

	// Protected exams survive deletion and cannot be overwritten by imports.
	ok, err := s.DeleteExam(ctx, "demo.json")
	if err != nil || ok {
		t.Errorf("DeleteExam(demo) = %v, %v; want false, nil", ok, err)
	}
	if err := s.SaveExam(ctx, demo); !errors.Is(err, ErrProtectedExam) {
		t.Errorf("SaveExam over demo = %v, want ErrProtectedExam", err)
	}

	seeded, err = s.SeedDemo(ctx, demo)
	if err != nil || seeded {
		t.Errorf("second SeedDemo = %v, %v; want false, nil", seeded, err)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetMetadata(ctx, "missing")
	if err != nil || v != "" {
		t.Fatalf("GetMetadata(missing) = %q, %v", v, err)
	}
	if err := s.SetMetadata(ctx, "k", "1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata(ctx, "k", "2"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	v, _ = s.GetMetadata(ctx, "k")
	if v != "2" {
		t.Errorf("expected 2, got %q", v)
	}
}

func TestPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.CheckPassword(ctx, "anything")
	if err != nil || !ok {
		t.Fatalf("CheckPassword without password = %v, %v", ok, err)
	}
	if err := s.SetPassword(ctx, "s3cret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if has, _ := s.HasPassword(ctx); !has {
		t.Error("HasPassword = false after SetPassword")
	}
	if ok, _ := s.CheckPassword(ctx, "s3cret"); !ok {
		t.Error("correct password rejected")
	}
	if ok, _ := s.CheckPassword(ctx, "wrong"); ok {
		t.Error("wrong password accepted")
	}
	if err := s.SetPassword(ctx, ""); err != nil {
		t.Fatalf("SetPassword(empty): %v", err)
	}
	if has, _ := s.HasPassword(ctx); has {
		t.Error("HasPassword = true after clearing")
	}
}

func TestExportHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestExam(t, s, "a.json")

	s.SaveHistory(ctx, []model.Report{
		{ID: "r1", Filename: "a.json", TestLength: 2, Correct: []bool{true, false},
			Incorrect: []int{}, Incomplete: []int{1}, Intervals: []int{7, 0}, Score: 50},
		{ID: "r2", Filename: "gone.json", TestLength: 1, Correct: []bool{false},
			Incorrect: []int{0}, Incomplete: []int{}},
	})

	out, err := s.ExportHistory(ctx)
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if out.Count != 2 || len(out.Results) != 2 {
		t.Fatalf("count = %d, results = %d", out.Count, len(out.Results))
	}
	q := out.Results[0].Questions
	if len(q) != 2 || q[0].Text != "2+2?" || !q[0].Correct || q[0].Seconds != 7 || q[1].Answered {
		t.Errorf("unexpected questions: %+v", q)
	}
	if out.Results[1].Questions[0].Text != "" || !out.Results[1].Questions[0].Answered {
		t.Errorf("report of deleted exam: %+v", out.Results[1].Questions)
	}
}
