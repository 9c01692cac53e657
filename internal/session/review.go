package session

import (
	"context"
	"fmt"

	"github.com/pavelanni/selftest/internal/attempt"
	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/navigate"
)

// ReviewHistory opens report i of the history for review. It fails with
// attempt.ErrExamMissing when the exam the report was taken from is gone.
func (c *Controller) ReviewHistory(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeBrowsing {
		return fmt.Errorf("review history in %s: %w", c.mode, ErrInvalidTransition)
	}
	if i < 0 || i >= len(c.history) {
		return fmt.Errorf("history %d: %w", i, ErrOutOfRange)
	}
	r := c.history[i].Clone()
	exam, ok := attempt.FindExam(c.exams, r.Filename)
	if !ok {
		return fmt.Errorf("review report %s: %w: %s", r.ID, attempt.ErrExamMissing, r.Filename)
	}
	exam, err := attempt.CopyExam(exam)
	if err != nil {
		return err
	}
	c.clearLocked()
	c.exam = &exam
	c.report = &r
	c.mode = model.ModeReviewing
	return nil
}

func (c *Controller) reviewingLocked() bool {
	return c.mode == model.ModeReviewing && c.report != nil && c.exam != nil
}

// reviewSubsetLocked returns the questions review type t visits, or nil for
// all questions.
func (c *Controller) reviewSubsetLocked(t model.ReviewType) []int {
	switch t {
	case model.ReviewIncorrect:
		return c.report.Incorrect
	case model.ReviewIncomplete:
		return c.report.Incomplete
	}
	return nil
}

// SetReviewMode switches between the report summary and the questions.
func (c *Controller) SetReviewMode(m model.ReviewMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() {
		return fmt.Errorf("set review mode in %s: %w", c.mode, ErrInvalidTransition)
	}
	c.reviewMode = m
	return nil
}

// SetReviewType restricts review navigation to incorrect or incomplete
// questions, or lifts the restriction. Filters with no questions are
// rejected. A filter jumps to its first question, lifting it to question 0.
func (c *Controller) SetReviewType(t model.ReviewType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() {
		return false
	}
	if t == model.ReviewAll {
		c.reviewQuestion = 0
	} else {
		subset := c.reviewSubsetLocked(t)
		if len(subset) == 0 {
			return false
		}
		c.reviewQuestion = subset[0]
	}
	c.reviewType = t
	return true
}

// GoToReviewQuestion shows question i, ignoring the review type.
func (c *Controller) GoToReviewQuestion(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() || i < 0 || i >= len(c.exam.Test) {
		return false
	}
	c.reviewQuestion = i
	c.reviewMode = model.ReviewQuestions
	return true
}

// NavigateReview moves in direction dir within the questions the review
// type visits. It returns false when nothing changed.
func (c *Controller) NavigateReview(dir navigate.Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() {
		return false
	}
	n := len(c.exam.Test)
	target := navigate.Target(c.reviewQuestion, n, dir)
	if target < 0 || target >= n {
		return false
	}
	if c.reviewType != model.ReviewAll {
		next, ok := navigate.Step(c.reviewSubsetLocked(c.reviewType), c.reviewQuestion, dir)
		if !ok || next == c.reviewQuestion {
			return false
		}
		target = next
	}
	c.reviewQuestion = target
	return true
}

// ReviewAnswer returns the question under review with its exam and the
// text of the answer given to it, read under one lock.
func (c *Controller) ReviewAnswer() (model.Exam, int, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() {
		return model.Exam{}, 0, "", fmt.Errorf("review answer in %s: %w", c.mode, ErrInvalidTransition)
	}
	q := c.reviewQuestion
	if q < 0 || q >= len(c.exam.Test) {
		return model.Exam{}, 0, "", fmt.Errorf("question %d: %w", q, ErrOutOfRange)
	}
	exam, err := attempt.CopyExam(*c.exam)
	if err != nil {
		return model.Exam{}, 0, "", err
	}
	return exam, q, c.report.AnswerText(exam.Test[q], q), nil
}

// EditExplanation replaces the explanation of the question under review.
// The change is applied to the exam catalog at once and written to the
// repository in the background.
func (c *Controller) EditExplanation(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reviewingLocked() {
		return fmt.Errorf("edit explanation in %s: %w", c.mode, ErrInvalidTransition)
	}
	q := c.reviewQuestion
	if q < 0 || q >= len(c.exam.Test) {
		return fmt.Errorf("question %d: %w", q, ErrOutOfRange)
	}
	c.exam.Test[q].Explanation = text
	filename := c.exam.Filename
	for i := range c.exams {
		if c.exams[i].Filename == filename && q < len(c.exams[i].Test) {
			c.exams[i].Test[q].Explanation = text
		}
	}
	c.enqueueLocked("explanation", func(ctx context.Context) error {
		return c.repo.SaveExplanation(ctx, filename, q, text)
	})
	c.log.Debug("explanation edited", "exam", filename, "question", q)
	return nil
}
