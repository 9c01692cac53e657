package store

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const passwordHashKey = "api_password_hash"

// SetPassword stores a bcrypt hash of the API password. An empty password
// removes the protection.
func (s *Store) SetPassword(ctx context.Context, password string) error {
	if password == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM exam_metadata WHERE key = ?`, passwordHashKey); err != nil {
			return err
		}
		slog.Info("api password cleared")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.SetMetadata(ctx, passwordHashKey, string(hash)); err != nil {
		return err
	}
	slog.Info("api password set")
	return nil
}

// HasPassword reports whether an API password is configured.
func (s *Store) HasPassword(ctx context.Context) (bool, error) {
	hash, err := s.GetMetadata(ctx, passwordHashKey)
	return hash != "", err
}

// CheckPassword reports whether password matches the stored hash. It is
// always true when no password is configured.
func (s *Store) CheckPassword(ctx context.Context, password string) (bool, error) {
	hash, err := s.GetMetadata(ctx, passwordHashKey)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
