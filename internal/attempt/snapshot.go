package attempt

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tiendc/go-deepcopy"

	"github.com/pavelanni/selftest/internal/model"
)

// ErrExamMissing is returned when a saved session or report refers to an
// exam file that is no longer in the catalog.
var ErrExamMissing = errors.New("source exam missing")

// Capture copies st into a new session record for exam. The record shares
// no slices with st.
func Capture(exam model.Exam, st *model.AttemptState, now time.Time) (model.SessionRecord, error) {
	var cp model.AttemptState
	if err := deepcopy.Copy(&cp, st); err != nil {
		return model.SessionRecord{}, fmt.Errorf("copy attempt state: %w", err)
	}
	return model.SessionRecord{
		ID:       uuid.NewString(),
		Filename: exam.Filename,
		Title:    exam.Title,
		SavedAt:  now,
		State:    cp,
	}, nil
}

// Restore rebuilds the attempt stored in rec and resolves its exam from
// exams by filename. The record is left untouched and shares no slices with
// the returned state.
func Restore(rec model.SessionRecord, exams []model.Exam) (*model.AttemptState, model.Exam, error) {
	exam, ok := FindExam(exams, rec.Filename)
	if !ok {
		return nil, model.Exam{}, fmt.Errorf("restore session %s: %w: %s", rec.ID, ErrExamMissing, rec.Filename)
	}
	st := &model.AttemptState{}
	if err := deepcopy.Copy(st, &rec.State); err != nil {
		return nil, model.Exam{}, fmt.Errorf("copy session state: %w", err)
	}
	if err := checkShape(st, exam); err != nil {
		return nil, model.Exam{}, fmt.Errorf("restore session %s: %w: %v", rec.ID, ErrExamMissing, err)
	}
	if st.Marked == nil {
		st.Marked = []int{}
	}
	if st.ExamMode == model.BookmarkedOnly && len(st.Marked) == 0 {
		st.ExamMode = model.AllQuestions
	}
	return st, exam, nil
}

// checkShape reports a state whose slots no longer line up with exam, as
// happens when the exam file was replaced after the session was saved.
func checkShape(st *model.AttemptState, exam model.Exam) error {
	n := len(exam.Test)
	if len(st.Answers) != n || len(st.FillIns) != n || len(st.Orders) != n || len(st.Intervals) != n {
		return fmt.Errorf("slots %d/%d/%d/%d for %d questions",
			len(st.Answers), len(st.FillIns), len(st.Orders), len(st.Intervals), n)
	}
	for i, q := range exam.Test {
		want := 1
		if q.Type.IsChoice() {
			want = len(q.Choices)
		}
		if len(st.Answers[i]) != want {
			return fmt.Errorf("question %d has %d answer slots, want %d", i, len(st.Answers[i]), want)
		}
	}
	if n > 0 && (st.Question < 0 || st.Question >= n) {
		return fmt.Errorf("current question %d out of range", st.Question)
	}
	for _, m := range st.Marked {
		if m < 0 || m >= n {
			return fmt.Errorf("bookmark %d out of range", m)
		}
	}
	return nil
}

// FindExam returns the exam with the given filename.
func FindExam(exams []model.Exam, filename string) (model.Exam, bool) {
	for _, e := range exams {
		if e.Filename == filename {
			return e, true
		}
	}
	return model.Exam{}, false
}

// CopyExam returns a deep copy of exam.
func CopyExam(exam model.Exam) (model.Exam, error) {
	var cp model.Exam
	if err := deepcopy.Copy(&cp, &exam); err != nil {
		return model.Exam{}, fmt.Errorf("copy exam: %w", err)
	}
	return cp, nil
}
