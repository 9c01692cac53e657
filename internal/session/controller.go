// Package session implements the exam session state machine: browsing the
// catalog, taking a timed exam, suspending and resuming it, and reviewing
// finished attempts.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/pavelanni/selftest/internal/attempt"
	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/navigate"
	"github.com/pavelanni/selftest/internal/scoring"
)

// Controller owns the exam catalog, the history, the saved sessions and the
// single active attempt. All methods are safe for concurrent use; events are
// applied one at a time. Repository writes happen in the background in the
// order the events occurred.
type Controller struct {
	mu sync.Mutex

	repo      Repository
	importer  Importer
	log       *slog.Logger
	now       func() time.Time
	tick      time.Duration
	queueSize int
	persist   *persister
	closed    bool

	exams    []model.Exam
	history  []model.Report
	sessions []model.SessionRecord

	mode     model.Mode
	mainView model.MainView

	// Set in cover, in progress and reviewing.
	exam *model.Exam

	st              *model.AttemptState
	showExplanation bool
	cancelTimer     context.CancelFunc
	timerGen        uint64

	report         *model.Report
	reviewType     model.ReviewType
	reviewMode     model.ReviewMode
	reviewQuestion int
}

// New returns a controller in browsing mode with an empty catalog. Call Load
// to read the repository.
func New(repo Repository, opts ...Option) *Controller {
	c := &Controller{
		repo:      repo,
		log:       slog.Default(),
		now:       time.Now,
		tick:      time.Second,
		queueSize: 64,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "session")
	c.persist = newPersister(c.log, c.queueSize)
	return c
}

// Load reads exams, history and sessions from the repository.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.reloadLocked(ctx); err != nil {
		return err
	}
	c.log.Info("catalog loaded", "exams", len(c.exams), "history", len(c.history), "sessions", len(c.sessions))
	return nil
}

func (c *Controller) reloadLocked(ctx context.Context) error {
	exams, err := c.repo.ListExams(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	history, err := c.repo.ListHistory(ctx)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	sessions, err := c.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	c.exams, c.history, c.sessions = exams, history, sessions
	return nil
}

// Flush blocks until every repository write queued so far has finished.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.persist.flush(ctx)
}

// Close stops the countdown and waits for queued writes to finish. The
// controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.closed = true
	c.mu.Unlock()
	c.persist.close()
}

// View is a copy of the controller state.
type View struct {
	Mode            model.Mode          `json:"-"`
	ModeName        string              `json:"mode"`
	MainView        string              `json:"mainView"`
	Exam            *model.Exam         `json:"exam,omitempty"`
	Attempt         *model.AttemptState `json:"attempt,omitempty"`
	TimerRunning    bool                `json:"timerRunning"`
	ShowExplanation bool                `json:"showExplanation"`
	Report          *model.Report       `json:"report,omitempty"`
	ReviewType      string              `json:"reviewType,omitempty"`
	ReviewMode      string              `json:"reviewMode,omitempty"`
	ReviewQuestion  int                 `json:"reviewQuestion"`
}

// View returns a deep copy of the current state.
func (c *Controller) View() (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Mode:            c.mode,
		ModeName:        c.mode.String(),
		MainView:        c.mainView.String(),
		TimerRunning:    c.cancelTimer != nil,
		ShowExplanation: c.showExplanation,
	}
	if c.exam != nil {
		exam, err := clone(*c.exam)
		if err != nil {
			return View{}, err
		}
		v.Exam = &exam
	}
	if c.st != nil {
		st, err := clone(*c.st)
		if err != nil {
			return View{}, err
		}
		v.Attempt = &st
	}
	if c.mode == model.ModeReviewing && c.report != nil {
		r := c.report.Clone()
		v.Report = &r
		v.ReviewType = c.reviewType.String()
		v.ReviewMode = c.reviewMode.String()
		v.ReviewQuestion = c.reviewQuestion
	}
	return v, nil
}

// Mode returns the top-level state.
func (c *Controller) Mode() model.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Exams returns a copy of the exam catalog.
func (c *Controller) Exams() ([]model.Exam, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.exams)
}

// History returns a copy of the completed attempts.
func (c *Controller) History() []model.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneReports(c.history)
}

// Sessions returns a copy of the saved sessions.
func (c *Controller) Sessions() []model.SessionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneSessions(c.sessions)
}

// SetMainView switches the list shown while browsing.
func (c *Controller) SetMainView(v model.MainView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeBrowsing {
		return fmt.Errorf("set view in %s: %w", c.mode, ErrInvalidTransition)
	}
	c.mainView = v
	return nil
}

// InitExam selects exam i and shows its cover with fresh answer slots.
func (c *Controller) InitExam(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeBrowsing {
		return fmt.Errorf("init exam in %s: %w", c.mode, ErrInvalidTransition)
	}
	if i < 0 || i >= len(c.exams) {
		return fmt.Errorf("exam %d: %w", i, ErrOutOfRange)
	}
	exam, err := attempt.CopyExam(c.exams[i])
	if err != nil {
		return err
	}
	c.exam = &exam
	c.st = attempt.Build(exam)
	c.showExplanation = false
	c.mode = model.ModeCover
	c.log.Debug("exam selected", "exam", exam.Filename, "questions", len(exam.Test))
	return nil
}

// Leave returns to browsing from the cover or from a review.
func (c *Controller) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.mode {
	case model.ModeCover, model.ModeReviewing:
		c.clearLocked()
		return nil
	case model.ModeBrowsing:
		return nil
	}
	return fmt.Errorf("leave %s: %w", c.mode, ErrInvalidTransition)
}

func (c *Controller) clearLocked() {
	c.stopTimerLocked()
	c.mode = model.ModeBrowsing
	c.exam = nil
	c.st = nil
	c.report = nil
	c.showExplanation = false
	c.reviewType = model.ReviewAll
	c.reviewMode = model.ReviewSummary
	c.reviewQuestion = 0
}

// StartExam leaves the cover and starts the countdown. While in progress it
// restarts a paused countdown.
func (c *Controller) StartExam() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.mode {
	case model.ModeCover:
		c.mode = model.ModeInProgress
		c.startTimerLocked()
		c.log.Info("exam started", "exam", c.exam.Filename, "time", c.st.Time)
		return nil
	case model.ModeInProgress:
		if c.cancelTimer == nil {
			c.startTimerLocked()
		}
		return nil
	}
	return fmt.Errorf("start exam in %s: %w", c.mode, ErrInvalidTransition)
}

// PauseTimer stops the countdown without leaving the exam.
func (c *Controller) PauseTimer() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeInProgress {
		return fmt.Errorf("pause in %s: %w", c.mode, ErrInvalidTransition)
	}
	c.stopTimerLocked()
	return nil
}

func (c *Controller) inProgressLocked() bool {
	return c.mode == model.ModeInProgress && c.st != nil && c.exam != nil
}

func (c *Controller) setQuestionLocked(i int) {
	if i != c.st.Question {
		c.showExplanation = false
	}
	c.st.Question = i
}

// GoTo selects question i directly, ignoring the exam mode.
func (c *Controller) GoTo(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() || i < 0 || i >= len(c.exam.Test) {
		return false
	}
	c.st.Question = i
	c.showExplanation = false
	return true
}

// Navigate moves in direction dir. In bookmarked-only mode it moves within
// the bookmarked questions. It returns false when nothing changed.
func (c *Controller) Navigate(dir navigate.Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() {
		return false
	}
	target := navigate.Target(c.st.Question, len(c.exam.Test), dir)
	if target < 0 || target >= len(c.exam.Test) {
		return false
	}
	if c.st.ExamMode == model.BookmarkedOnly {
		next, ok := navigate.Step(c.st.Marked, c.st.Question, dir)
		if !ok || next == c.st.Question {
			return false
		}
		target = next
	}
	c.setQuestionLocked(target)
	return true
}

// SetExamMode switches between all questions and bookmarked questions.
// Bookmarked-only mode needs at least one bookmark and jumps to the first.
func (c *Controller) SetExamMode(m model.ExamMode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() {
		return false
	}
	if m == model.BookmarkedOnly {
		if len(c.st.Marked) == 0 {
			return false
		}
		c.setQuestionLocked(c.st.Marked[0])
	}
	c.st.ExamMode = m
	return true
}

// Bookmark adds question i to or removes it from the bookmarks.
func (c *Controller) Bookmark(i int, add bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() || i < 0 || i >= len(c.exam.Test) {
		return false
	}
	if add {
		if !slices.Contains(c.st.Marked, i) {
			c.st.Marked = append(c.st.Marked, i)
			slices.Sort(c.st.Marked)
		}
		return true
	}
	c.st.Marked = slices.DeleteFunc(c.st.Marked, func(v int) bool { return v == i })
	if c.st.ExamMode != model.BookmarkedOnly {
		return true
	}
	switch {
	case len(c.st.Marked) == 0:
		c.st.ExamMode = model.AllQuestions
	case c.st.Question == i:
		c.setQuestionLocked(c.st.Marked[0])
	}
	return true
}

// ToggleExplanation shows or hides the explanation of the current question.
func (c *Controller) ToggleExplanation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() {
		return false
	}
	c.showExplanation = !c.showExplanation
	return true
}

// answerableLocked returns the current question when it has one of types.
// Answers are still accepted after the countdown has run out.
func (c *Controller) answerableLocked(types ...model.QuestionType) (model.Question, int, bool) {
	if !c.inProgressLocked() {
		return model.Question{}, 0, false
	}
	i := c.st.Question
	if i < 0 || i >= len(c.exam.Test) {
		return model.Question{}, 0, false
	}
	q := c.exam.Test[i]
	if !slices.Contains(types, q.Type) {
		return model.Question{}, 0, false
	}
	return q, i, true
}

// AnswerMultipleChoice selects choice on the current question, replacing
// any earlier selection.
func (c *Controller) AnswerMultipleChoice(choice int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, i, ok := c.answerableLocked(model.MultipleChoice)
	if !ok {
		return false
	}
	slot, ok := scoring.SelectChoice(len(q.Choices), choice)
	if !ok {
		return false
	}
	c.st.Answers[i] = slot
	return true
}

// AnswerMultipleAnswer stores the raw selection for the current question.
func (c *Controller) AnswerMultipleAnswer(sel []bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, i, ok := c.answerableLocked(model.MultipleAnswer)
	if !ok || len(sel) != len(q.Choices) {
		return false
	}
	c.st.Answers[i] = slices.Clone(sel)
	return true
}

// AnswerFillIn stores text for the current question and whether it matches
// an accepted answer.
func (c *Controller) AnswerFillIn(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, i, ok := c.answerableLocked(model.FillIn)
	if !ok {
		return false
	}
	c.st.FillIns[i] = text
	c.st.Answers[i] = []bool{scoring.MatchFillIn(q, text)}
	return true
}

// AnswerOrder stores a permutation of the current question's choices.
func (c *Controller) AnswerOrder(order []int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, i, ok := c.answerableLocked(model.Ordering)
	if !ok || !scoring.ValidOrder(order, len(q.Choices)) {
		return false
	}
	c.st.Orders[i] = slices.Clone(order)
	c.st.Answers[i] = []bool{scoring.IsIdentityOrder(order)}
	return true
}

// EndExam scores the attempt, appends the report to the history and opens
// its review.
func (c *Controller) EndExam() (model.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() {
		return model.Report{}, fmt.Errorf("end exam in %s: %w", c.mode, ErrInvalidTransition)
	}
	c.stopTimerLocked()

	report := scoring.Analyze(*c.exam, c.st, c.now())
	c.history = append(c.history, report)
	c.saveHistoryLocked()

	exam := c.exam
	c.clearLocked()
	c.exam = exam
	c.report = &report
	c.mode = model.ModeReviewing
	c.log.Info("exam ended", "exam", report.Filename, "score", report.Score, "status", report.Status,
		"incorrect", len(report.Incorrect), "incomplete", len(report.Incomplete))
	return report.Clone(), nil
}

// SaveSession suspends the attempt into a new saved session and returns to
// browsing.
func (c *Controller) SaveSession() (model.SessionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inProgressLocked() {
		return model.SessionRecord{}, fmt.Errorf("save session in %s: %w", c.mode, ErrInvalidTransition)
	}
	c.stopTimerLocked()

	rec, err := attempt.Capture(*c.exam, c.st, c.now())
	if err != nil {
		return model.SessionRecord{}, err
	}
	c.sessions = append(c.sessions, rec)
	c.saveSessionsLocked()

	c.clearLocked()
	c.mainView = model.ViewSessions
	c.log.Info("session saved", "exam", rec.Filename, "id", rec.ID, "time", rec.State.Time)
	return rec.Clone(), nil
}

// ResumeSession restores saved session i and restarts the countdown. The
// saved session is kept.
func (c *Controller) ResumeSession(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeBrowsing {
		return fmt.Errorf("resume session in %s: %w", c.mode, ErrInvalidTransition)
	}
	if i < 0 || i >= len(c.sessions) {
		return fmt.Errorf("session %d: %w", i, ErrOutOfRange)
	}
	st, exam, err := attempt.Restore(c.sessions[i], c.exams)
	if err != nil {
		return err
	}
	exam, err = attempt.CopyExam(exam)
	if err != nil {
		return err
	}
	c.exam = &exam
	c.st = st
	c.showExplanation = false
	c.mode = model.ModeInProgress
	c.startTimerLocked()
	c.log.Info("session resumed", "exam", exam.Filename, "id", c.sessions[i].ID, "time", st.Time)
	return nil
}

func (c *Controller) enqueueLocked(name string, run func(ctx context.Context) error) {
	if c.closed {
		c.log.Warn("write dropped after close", "job", name)
		return
	}
	c.persist.enqueue(name, run)
}

func (c *Controller) saveHistoryLocked() {
	history := model.CloneReports(c.history)
	c.enqueueLocked("history", func(ctx context.Context) error {
		return c.repo.SaveHistory(ctx, history)
	})
}

func (c *Controller) saveSessionsLocked() {
	sessions := model.CloneSessions(c.sessions)
	c.enqueueLocked("sessions", func(ctx context.Context) error {
		return c.repo.SaveSessions(ctx, sessions)
	})
}

func clone[T any](src T) (T, error) {
	var dst T
	if err := deepcopy.Copy(&dst, &src); err != nil {
		return dst, fmt.Errorf("deep copy: %w", err)
	}
	return dst, nil
}
