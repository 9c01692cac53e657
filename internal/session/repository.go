package session

import (
	"context"
	"errors"

	"github.com/pavelanni/selftest/internal/model"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the current mode.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrOutOfRange is returned when a list index does not exist.
	ErrOutOfRange = errors.New("index out of range")
	// ErrNoImporter is returned by the import operations when the
	// controller was built without an importer.
	ErrNoImporter = errors.New("no importer configured")
)

// Repository loads and stores everything the controller keeps between runs.
type Repository interface {
	ListExams(ctx context.Context) ([]model.Exam, error)
	ListHistory(ctx context.Context) ([]model.Report, error)
	ListSessions(ctx context.Context) ([]model.SessionRecord, error)

	// SaveHistory and SaveSessions replace the stored list.
	SaveHistory(ctx context.Context, history []model.Report) error
	SaveSessions(ctx context.Context, sessions []model.SessionRecord) error

	// SaveExplanation rewrites the explanation of one question of a stored exam.
	SaveExplanation(ctx context.Context, filename string, question int, text string) error

	// DeleteExam removes an exam and every session and report that refers
	// to it. It returns false without deleting anything for protected exams.
	DeleteExam(ctx context.Context, filename string) (bool, error)
}

// Importer validates exam documents and adds them to the repository. On a
// validation failure it returns the messages and a nil error.
type Importer interface {
	ImportFile(ctx context.Context, path string) ([]string, error)
	Import(ctx context.Context, filename string, data []byte) ([]string, error)
}
