package model

import (
	"fmt"
	"time"
)

// QuestionType identifies how a question is answered and scored.
type QuestionType string

const (
	// MultipleChoice allows exactly one selected choice.
	MultipleChoice QuestionType = "multiple-choice"
	// MultipleAnswer allows any subset of choices.
	MultipleAnswer QuestionType = "multiple-answer"
	// FillIn is answered with free text matched against the choice texts.
	FillIn QuestionType = "fill-in"
	// Ordering is answered with a permutation of the choices.
	Ordering QuestionType = "ordering"
)

// IsChoice reports whether answers to this type are stored as one flag per choice.
func (t QuestionType) IsChoice() bool {
	return t == MultipleChoice || t == MultipleAnswer
}

// Choice is one option of a question. For fill-in questions the text is an
// accepted answer; for ordering questions the position in the list is the
// correct position.
type Choice struct {
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Text    string `json:"text" yaml:"text" validate:"required"`
	Correct bool   `json:"correct,omitempty" yaml:"correct,omitempty"`
}

// Question is a single exam question.
type Question struct {
	Type        QuestionType `json:"type" yaml:"type" validate:"required,oneof=multiple-choice multiple-answer fill-in ordering"`
	Text        string       `json:"text" yaml:"text" validate:"required"`
	Choices     []Choice     `json:"choices" yaml:"choices" validate:"required,min=1,dive"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Exam is a loaded exam definition. It is read-only except for question
// explanations, which may be rewritten while reviewing.
type Exam struct {
	Filename    string     `json:"filename" yaml:"filename"`
	Title       string     `json:"title" yaml:"title" validate:"required"`
	Code        string     `json:"code,omitempty" yaml:"code,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Time        int        `json:"time" yaml:"time" validate:"gte=1,lte=1440"`
	Pass        int        `json:"pass" yaml:"pass" validate:"gte=0,lte=100"`
	Test        []Question `json:"test" yaml:"test" validate:"required,min=1,dive"`
	Protected   bool       `json:"protected,omitempty" yaml:"-"`
}

// Duration returns the configured exam length in seconds.
func (e Exam) Duration() int {
	return e.Time * 60
}

// ExamMode selects which questions exam navigation visits.
type ExamMode int

const (
	AllQuestions ExamMode = iota
	BookmarkedOnly
)

func (m ExamMode) String() string {
	if m == BookmarkedOnly {
		return "bookmarked"
	}
	return "all"
}

// AttemptState is the mutable state of one in-progress attempt. Answers,
// FillIns, Orders and Intervals always have one slot per question; Marked is
// sorted ascending without duplicates.
type AttemptState struct {
	Answers   [][]bool `json:"answers"`
	FillIns   []string `json:"fillIns"`
	Orders    [][]int  `json:"orders"`
	Marked    []int    `json:"marked"`
	Intervals []int    `json:"intervals"`
	Time      int      `json:"time"`
	Question  int      `json:"question"`
	ExamMode  ExamMode `json:"examMode"`
}

// ReportStatus is the pass/fail outcome of a completed attempt.
type ReportStatus string

const (
	StatusPass ReportStatus = "pass"
	StatusFail ReportStatus = "fail"
)

// Report is the scored summary of one completed attempt. Every index in
// [0, TestLength) is either correct, in Incorrect or in Incomplete.
type Report struct {
	ID         string       `json:"id"`
	Filename   string       `json:"filename"`
	Title      string       `json:"title"`
	Date       time.Time    `json:"date"`
	TestLength int          `json:"testLength"`
	Correct    []bool       `json:"correct"`
	Incorrect  []int        `json:"incorrect"`
	Incomplete []int        `json:"incomplete"`
	Score      float64      `json:"score"`
	Status     ReportStatus `json:"status"`
	Elapsed    int          `json:"elapsed"`
	Intervals  []int        `json:"intervals"`
	Answers    [][]bool     `json:"answers"`
	FillIns    []string     `json:"fillIns"`
	Orders     [][]int      `json:"orders"`
}

// CorrectCount returns the number of questions answered correctly.
func (r Report) CorrectCount() int {
	n := 0
	for _, ok := range r.Correct {
		if ok {
			n++
		}
	}
	return n
}

// SessionRecord is a suspended attempt that can be resumed later.
type SessionRecord struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Title    string       `json:"title"`
	SavedAt  time.Time    `json:"savedAt"`
	State    AttemptState `json:"state"`
}

// Mode is the top-level application state.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeCover
	ModeInProgress
	ModeReviewing
)

func (m Mode) String() string {
	switch m {
	case ModeCover:
		return "cover"
	case ModeInProgress:
		return "in_progress"
	case ModeReviewing:
		return "reviewing"
	default:
		return "browsing"
	}
}

// MainView is the list shown while browsing.
type MainView int

const (
	ViewExams MainView = iota
	ViewHistory
	ViewSessions
	ViewOptions
	ViewAddRemote
)

// ReviewType filters which questions review navigation visits.
type ReviewType int

const (
	ReviewAll ReviewType = iota
	ReviewIncorrect
	ReviewIncomplete
)

func (t ReviewType) String() string {
	switch t {
	case ReviewIncorrect:
		return "incorrect"
	case ReviewIncomplete:
		return "incomplete"
	default:
		return "all"
	}
}

// ReviewMode selects the report summary or the per-question view.
type ReviewMode int

const (
	ReviewSummary ReviewMode = iota
	ReviewQuestions
)

func (m ReviewMode) String() string {
	if m == ReviewQuestions {
		return "questions"
	}
	return "summary"
}

func (v MainView) String() string {
	switch v {
	case ViewHistory:
		return "history"
	case ViewSessions:
		return "sessions"
	case ViewOptions:
		return "options"
	case ViewAddRemote:
		return "add_remote"
	default:
		return "exams"
	}
}

// ParseMainView converts the wire name of a browsing view.
func ParseMainView(s string) (MainView, error) {
	for _, v := range []MainView{ViewExams, ViewHistory, ViewSessions, ViewOptions, ViewAddRemote} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// ParseExamMode converts the wire name of an exam mode.
func ParseExamMode(s string) (ExamMode, error) {
	switch s {
	case "all":
		return AllQuestions, nil
	case "bookmarked":
		return BookmarkedOnly, nil
	}
	return 0, fmt.Errorf("unknown exam mode %q", s)
}

// ParseReviewType converts the wire name of a review filter.
func ParseReviewType(s string) (ReviewType, error) {
	for _, t := range []ReviewType{ReviewAll, ReviewIncorrect, ReviewIncomplete} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown review type %q", s)
}

// ParseReviewMode converts the wire name of a review mode.
func ParseReviewMode(s string) (ReviewMode, error) {
	switch s {
	case "summary":
		return ReviewSummary, nil
	case "questions":
		return ReviewQuestions, nil
	}
	return 0, fmt.Errorf("unknown review mode %q", s)
}
