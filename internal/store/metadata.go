package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pavelanni/selftest/internal/model"
)

const demoSeededKey = "demo_seeded_at"

// SetMetadata upserts a key-value pair in the exam_metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM exam_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SeedDemo stores exam as a protected exam the first time it is called on a
// database. Later calls do nothing, even if the demo exam was replaced.
// It reports whether the exam was stored.
func (s *Store) SeedDemo(ctx context.Context, exam model.Exam) (bool, error) {
	seeded, err := s.GetMetadata(ctx, demoSeededKey)
	if err != nil {
		return false, err
	}
	if seeded != "" {
		return false, nil
	}
	exam.Protected = true
	if err := s.SaveExam(ctx, exam); err != nil {
		return false, fmt.Errorf("save demo exam: %w", err)
	}
	if err := s.SetMetadata(ctx, demoSeededKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return false, err
	}
	return true, nil
}
