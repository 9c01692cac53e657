package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/pavelanni/selftest/internal/model"
)

// DeleteHistory removes report i from the history.
func (c *Controller) DeleteHistory(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.history) {
		return fmt.Errorf("history %d: %w", i, ErrOutOfRange)
	}
	c.history = slices.Delete(c.history, i, i+1)
	c.saveHistoryLocked()
	return nil
}

// DeleteSession removes saved session i.
func (c *Controller) DeleteSession(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.sessions) {
		return fmt.Errorf("session %d: %w", i, ErrOutOfRange)
	}
	c.sessions = slices.Delete(c.sessions, i, i+1)
	c.saveSessionsLocked()
	return nil
}

// DeleteExam removes exam i together with the sessions and reports that
// refer to it. It returns false when the repository refuses, as it does for
// protected exams.
func (c *Controller) DeleteExam(ctx context.Context, i int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != model.ModeBrowsing {
		return false, fmt.Errorf("delete exam in %s: %w", c.mode, ErrInvalidTransition)
	}
	if i < 0 || i >= len(c.exams) {
		return false, fmt.Errorf("exam %d: %w", i, ErrOutOfRange)
	}
	filename := c.exams[i].Filename
	if c.exams[i].Protected {
		c.log.Info("refused to delete protected exam", "exam", filename)
		return false, nil
	}

	// Queued list writes would otherwise bring back rows the cascade removes.
	if !c.closed {
		if err := c.persist.flush(ctx); err != nil {
			return false, fmt.Errorf("flush writes: %w", err)
		}
	}
	ok, err := c.repo.DeleteExam(ctx, filename)
	if err != nil {
		return false, fmt.Errorf("delete exam %s: %w", filename, err)
	}
	if !ok {
		return false, nil
	}

	c.exams = slices.DeleteFunc(c.exams, func(e model.Exam) bool { return e.Filename == filename })
	c.history = slices.DeleteFunc(c.history, func(r model.Report) bool { return r.Filename == filename })
	c.sessions = slices.DeleteFunc(c.sessions, func(s model.SessionRecord) bool { return s.Filename == filename })
	c.log.Info("exam deleted", "exam", filename)
	return true, nil
}

// LoadLocalExam imports the exam file at path. On success the catalog is
// reloaded and the exam list is shown. Validation problems are returned as
// messages with a nil error.
func (c *Controller) LoadLocalExam(ctx context.Context, path string) ([]string, error) {
	return c.importExam(ctx, func(imp Importer) ([]string, error) {
		return imp.ImportFile(ctx, path)
	})
}

// LoadRemoteExam imports an exam document fetched by the caller.
func (c *Controller) LoadRemoteExam(ctx context.Context, filename string, data []byte) ([]string, error) {
	return c.importExam(ctx, func(imp Importer) ([]string, error) {
		return imp.Import(ctx, filename, data)
	})
}

func (c *Controller) importExam(ctx context.Context, run func(Importer) ([]string, error)) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.importer == nil {
		return nil, ErrNoImporter
	}
	if c.mode != model.ModeBrowsing {
		return nil, fmt.Errorf("import in %s: %w", c.mode, ErrInvalidTransition)
	}
	problems, err := run(c.importer)
	if err != nil || len(problems) > 0 {
		return problems, err
	}
	// The reload must see explanation edits still in the queue.
	if !c.closed {
		if err := c.persist.flush(ctx); err != nil {
			return nil, fmt.Errorf("flush writes: %w", err)
		}
	}
	exams, err := c.repo.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	c.exams = exams
	c.mainView = model.ViewExams
	return nil, nil
}
