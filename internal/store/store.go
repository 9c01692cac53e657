package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/selftest/internal/model"

	_ "modernc.org/sqlite"
)

// ErrProtectedExam is returned when an import would overwrite a protected exam.
var ErrProtectedExam = errors.New("exam is protected")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		data TEXT NOT NULL,
		protected INTEGER NOT NULL DEFAULT 0,
		added_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exam_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveExam inserts an exam or replaces the stored exam with the same
// filename. Protected exams cannot be replaced by unprotected ones.
func (s *Store) SaveExam(ctx context.Context, exam model.Exam) error {
	current, err := s.GetExam(ctx, exam.Filename)
	if err != nil {
		return err
	}
	if current != nil && current.Protected && !exam.Protected {
		return fmt.Errorf("save %s: %w", exam.Filename, ErrProtectedExam)
	}
	data, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exams (filename, title, data, protected, added_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET title = ?, data = ?, protected = ?`,
		exam.Filename, exam.Title, data, exam.Protected, time.Now(),
		exam.Title, data, exam.Protected,
	)
	return err
}

// GetExam returns the exam stored under filename.
// Returns nil and nil error if there is none.
func (s *Store) GetExam(ctx context.Context, filename string) (*model.Exam, error) {
	var data string
	var protected bool
	err := s.db.QueryRowContext(ctx,
		`SELECT data, protected FROM exams WHERE filename = ?`, filename,
	).Scan(&data, &protected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	exam, err := decodeExam(data, filename, protected)
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListExams returns all exams in the order they were added.
func (s *Store) ListExams(ctx context.Context) ([]model.Exam, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, data, protected FROM exams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		var filename, data string
		var protected bool
		if err := rows.Scan(&filename, &data, &protected); err != nil {
			return nil, err
		}
		exam, err := decodeExam(data, filename, protected)
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, rows.Err()
}

func decodeExam(data, filename string, protected bool) (model.Exam, error) {
	var exam model.Exam
	if err := json.Unmarshal([]byte(data), &exam); err != nil {
		return model.Exam{}, fmt.Errorf("decode exam %s: %w", filename, err)
	}
	exam.Filename = filename
	exam.Protected = protected
	return exam, nil
}

// SaveExplanation rewrites the explanation of question q of an exam.
func (s *Store) SaveExplanation(ctx context.Context, filename string, q int, text string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	var protected bool
	err = tx.QueryRowContext(ctx,
		`SELECT data, protected FROM exams WHERE filename = ?`, filename,
	).Scan(&data, &protected)
	if err == sql.ErrNoRows {
		return fmt.Errorf("exam %s not found", filename)
	}
	if err != nil {
		return err
	}
	exam, err := decodeExam(data, filename, protected)
	if err != nil {
		return err
	}
	if q < 0 || q >= len(exam.Test) {
		return fmt.Errorf("exam %s has no question %d", filename, q)
	}
	exam.Test[q].Explanation = text
	out, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE exams SET data = ? WHERE filename = ?`, out, filename); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExam removes an exam and the history and sessions that refer to it.
// Protected and unknown exams are left alone and false is returned.
func (s *Store) DeleteExam(ctx context.Context, filename string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE filename = ? AND protected = 0`, filename)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE filename = ?`, filename); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE filename = ?`, filename); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// ListHistory returns all reports, oldest first.
func (s *Store) ListHistory(ctx context.Context) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM history ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []model.Report
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r model.Report
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

// SaveHistory replaces the stored history with history.
func (s *Store) SaveHistory(ctx context.Context, history []model.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	for i, r := range history {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode report %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history (position, id, filename, data) VALUES (?, ?, ?, ?)`,
			i, r.ID, r.Filename, data,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListSessions returns all saved sessions, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM sessions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.SessionRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec model.SessionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	return sessions, rows.Err()
}

// SaveSessions replaces the stored sessions with sessions.
func (s *Store) SaveSessions(ctx context.Context, sessions []model.SessionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return err
	}
	for i, rec := range sessions {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (position, id, filename, data) VALUES (?, ?, ?, ?)`,
			i, rec.ID, rec.Filename, data,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ExamCount returns the number of stored exams.
func (s *Store) ExamCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exams`).Scan(&count)
	return count, err
}
