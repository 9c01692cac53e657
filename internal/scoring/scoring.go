// Package scoring evaluates answers against exam questions and turns a
// finished attempt into a report.
package scoring

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/pavelanni/selftest/internal/model"
)

// SelectChoice returns the answer slot of a single-select question with n
// choices after choosing index choice. ok is false if choice is out of range.
func SelectChoice(n, choice int) (slot []bool, ok bool) {
	if choice < 0 || choice >= n {
		return nil, false
	}
	slot = make([]bool, n)
	slot[choice] = true
	return slot, true
}

// EvaluateChoices reports whether a choice selection answers q correctly.
// A multiple-choice question needs exactly one selected choice that is
// flagged correct; a multiple-answer question needs the selection to equal
// the set of correct choices.
func EvaluateChoices(q model.Question, sel []bool) bool {
	if len(sel) != len(q.Choices) {
		return false
	}
	switch q.Type {
	case model.MultipleChoice:
		picked := -1
		for i, v := range sel {
			if !v {
				continue
			}
			if picked >= 0 {
				return false
			}
			picked = i
		}
		return picked >= 0 && q.Choices[picked].Correct
	case model.MultipleAnswer:
		for i, v := range sel {
			if v != q.Choices[i].Correct {
				return false
			}
		}
		return true
	}
	return false
}

// MatchFillIn reports whether text matches one of the accepted answers of
// q, ignoring case and surrounding whitespace.
func MatchFillIn(q model.Question, text string) bool {
	want := fold(text)
	if want == "" {
		return false
	}
	for _, c := range q.Choices {
		if fold(c.Text) == want {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ValidOrder reports whether order is a permutation of [0, n).
func ValidOrder(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// IsIdentityOrder reports whether order lists every choice at its natural
// position.
func IsIdentityOrder(order []int) bool {
	for i, v := range order {
		if v != i {
			return false
		}
	}
	return len(order) > 0
}

// Answered reports whether question i of st has been attempted.
func Answered(q model.Question, st *model.AttemptState, i int) bool {
	switch q.Type {
	case model.FillIn:
		return i < len(st.FillIns) && st.FillIns[i] != ""
	case model.Ordering:
		return i < len(st.Orders) && len(st.Orders[i]) > 0
	default:
		return i < len(st.Answers) && slices.Contains(st.Answers[i], true)
	}
}

// Correct reports whether the stored answer to question i of st is right.
func Correct(q model.Question, st *model.AttemptState, i int) bool {
	if i >= len(st.Answers) {
		return false
	}
	slot := st.Answers[i]
	if q.Type.IsChoice() {
		return EvaluateChoices(q, slot)
	}
	return len(slot) == 1 && slot[0]
}

// Analyze scores the attempt st of exam. It never fails: questions with no
// recorded answer are reported incomplete.
func Analyze(exam model.Exam, st *model.AttemptState, now time.Time) model.Report {
	n := len(exam.Test)
	r := model.Report{
		ID:         uuid.NewString(),
		Filename:   exam.Filename,
		Title:      exam.Title,
		Date:       now,
		TestLength: n,
		Correct:    make([]bool, n),
		Incorrect:  []int{},
		Incomplete: []int{},
		Intervals:  slices.Clone(st.Intervals),
		Answers:    make([][]bool, len(st.Answers)),
		FillIns:    slices.Clone(st.FillIns),
		Orders:     make([][]int, len(st.Orders)),
	}
	for i := range st.Answers {
		r.Answers[i] = slices.Clone(st.Answers[i])
	}
	for i := range st.Orders {
		r.Orders[i] = slices.Clone(st.Orders[i])
	}

	correct := 0
	for i, q := range exam.Test {
		switch {
		case !Answered(q, st, i):
			r.Incomplete = append(r.Incomplete, i)
		case !Correct(q, st, i):
			r.Incorrect = append(r.Incorrect, i)
		default:
			r.Correct[i] = true
			correct++
		}
	}

	for _, s := range st.Intervals {
		r.Elapsed += s
	}
	if d := exam.Duration(); d > 0 && r.Elapsed > d {
		r.Elapsed = d
	}

	if n > 0 {
		r.Score = math.Round(float64(correct)/float64(n)*1000) / 10
	}
	r.Status = model.StatusFail
	if r.Score >= float64(exam.Pass) {
		r.Status = model.StatusPass
	}
	return r
}
