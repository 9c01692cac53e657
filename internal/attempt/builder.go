// Package attempt creates, captures and restores the per-attempt answer
// containers of an exam.
package attempt

import "github.com/pavelanni/selftest/internal/model"

// Build returns fresh answer containers for exam: one unanswered slot per
// question and zeroed intervals. Every slot is a distinct slice. The
// countdown starts at the full exam duration.
func Build(exam model.Exam) *model.AttemptState {
	n := len(exam.Test)
	st := &model.AttemptState{
		Answers:   make([][]bool, n),
		FillIns:   make([]string, n),
		Orders:    make([][]int, n),
		Marked:    []int{},
		Intervals: make([]int, n),
		Time:      exam.Duration(),
	}
	for i, q := range exam.Test {
		if q.Type.IsChoice() {
			st.Answers[i] = make([]bool, len(q.Choices))
		} else {
			st.Answers[i] = []bool{false}
		}
		st.Orders[i] = []int{}
	}
	return st
}
