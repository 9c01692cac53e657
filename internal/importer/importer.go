// Package importer reads exam documents, validates them and adds them to
// the exam store.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/store"
)

const maxDocumentSize = 4 << 20

// ExamStore is where accepted exams are written.
type ExamStore interface {
	SaveExam(ctx context.Context, exam model.Exam) error
}

// Importer validates exam documents and saves the valid ones.
type Importer struct {
	fs     afero.Fs
	store  ExamStore
	schema *schema
	client *http.Client
}

// New returns an importer that reads local files from fs.
func New(st ExamStore, fs afero.Fs) (*Importer, error) {
	sc, err := newSchema()
	if err != nil {
		return nil, err
	}
	return &Importer{
		fs:     fs,
		store:  st,
		schema: sc,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ImportFile imports the exam file at p. The stored filename is the base
// name of p.
func (im *Importer) ImportFile(ctx context.Context, p string) ([]string, error) {
	info, err := im.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.Size() > maxDocumentSize {
		return []string{fmt.Sprintf("%s is larger than %d bytes", p, maxDocumentSize)}, nil
	}
	data, err := afero.ReadFile(im.fs, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return im.Import(ctx, filepath.Base(p), data)
}

// Import validates data as the exam document filename and saves it.
// Validation problems are returned as messages with a nil error.
func (im *Importer) Import(ctx context.Context, filename string, data []byte) ([]string, error) {
	exam, problems := im.Parse(filename, data)
	if len(problems) > 0 {
		slog.Info("exam rejected", "filename", filename, "problems", len(problems))
		return problems, nil
	}
	if err := im.store.SaveExam(ctx, exam); err != nil {
		if errors.Is(err, store.ErrProtectedExam) {
			return []string{fmt.Sprintf("%s is a protected exam and cannot be replaced", exam.Filename)}, nil
		}
		return nil, fmt.Errorf("save exam %s: %w", exam.Filename, err)
	}
	slog.Info("exam imported", "filename", exam.Filename, "title", exam.Title, "questions", len(exam.Test))
	return nil, nil
}

// Parse decodes and validates an exam document. The format follows the
// file extension: .json, .yaml or .yml.
func (im *Importer) Parse(filename string, data []byte) (model.Exam, []string) {
	name, err := NormalizeFilename(filename)
	if err != nil {
		return model.Exam{}, []string{err.Error()}
	}
	var exam model.Exam
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&exam); err != nil {
			return model.Exam{}, []string{fmt.Sprintf("invalid JSON: %v", err)}
		}
	default:
		if err := yaml.Unmarshal(data, &exam); err != nil {
			return model.Exam{}, []string{fmt.Sprintf("invalid YAML: %v", err)}
		}
	}
	exam.Filename = name
	exam.Protected = false
	if problems := im.schema.check(exam); len(problems) > 0 {
		return model.Exam{}, problems
	}
	return exam, nil
}

// NormalizeFilename reduces filename to a base name with a supported
// extension.
func NormalizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("missing file name")
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return name, nil
	}
	return "", fmt.Errorf("%s: unsupported file type, want .json, .yaml or .yml", name)
}

// Fetch downloads an exam document and returns it with the file name taken
// from the URL path.
func (im *Importer) Fetch(ctx context.Context, rawURL string) (string, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := im.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch %s: %s", u.Redacted(), resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", u.Redacted(), err)
	}
	if len(data) > maxDocumentSize {
		return "", nil, fmt.Errorf("%s is larger than %d bytes", u.Redacted(), maxDocumentSize)
	}
	return path.Base(u.Path), data, nil
}
