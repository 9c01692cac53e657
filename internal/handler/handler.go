// Package handler exposes the exam session controller as a local JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/selftest/internal/attempt"
	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/session"
)

// Authenticator checks the API password. It accepts any password when none
// is configured.
type Authenticator interface {
	CheckPassword(ctx context.Context, password string) (bool, error)
}

// Fetcher downloads a remote exam document.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, []byte, error)
}

// Drafter writes an explanation for a question.
type Drafter interface {
	DraftExplanation(ctx context.Context, exam model.Exam, q int, answer string) (string, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	ctl     *session.Controller
	auth    Authenticator
	fetcher Fetcher
	drafter Drafter
}

// New creates a new Handler. auth, fetcher and drafter may be nil, which
// disables the password check, remote imports and explanation drafts.
func New(ctl *session.Controller, auth Authenticator, fetcher Fetcher, drafter Drafter) *Handler {
	return &Handler{ctl: ctl, auth: auth, fetcher: fetcher, drafter: drafter}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(appI18n.Middleware)
	r.Use(h.requireAuth)

	r.Get("/state", h.handleState)
	r.Put("/view", h.handleSetView)
	r.Post("/leave", h.handleLeave)

	r.Get("/exams", h.handleListExams)
	r.Post("/exams/{index}/cover", h.handleCover)
	r.Delete("/exams/{index}", h.handleDeleteExam)
	r.Post("/import", h.handleImport)

	r.Route("/exam", func(r chi.Router) {
		r.Post("/start", h.handleStart)
		r.Post("/pause", h.handlePause)
		r.Post("/goto", h.handleGoTo)
		r.Post("/navigate", h.handleNavigate)
		r.Post("/mode", h.handleExamMode)
		r.Post("/bookmark", h.handleBookmark)
		r.Post("/answer", h.handleAnswer)
		r.Post("/explanation", h.handleToggleExplanation)
		r.Post("/end", h.handleEnd)
		r.Post("/save", h.handleSave)
	})

	r.Get("/sessions", h.handleListSessions)
	r.Post("/sessions/{index}/resume", h.handleResume)
	r.Delete("/sessions/{index}", h.handleDeleteSession)

	r.Get("/history", h.handleListHistory)
	r.Post("/history/{index}/review", h.handleReviewHistory)
	r.Delete("/history/{index}", h.handleDeleteHistory)

	r.Route("/review", func(r chi.Router) {
		r.Post("/mode", h.handleReviewMode)
		r.Post("/type", h.handleReviewType)
		r.Post("/goto", h.handleReviewGoTo)
		r.Post("/navigate", h.handleReviewNavigate)
		r.Put("/explanation", h.handleEditExplanation)
		r.Post("/explanation/draft", h.handleDraftExplanation)
	})
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, errorResponse{Error: appI18n.T(r.Context(), msgID)})
}

// writeError maps controller errors to a status code and a localized message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		writeMessage(w, r, http.StatusConflict, "ErrInvalidTransition")
	case errors.Is(err, session.ErrOutOfRange):
		writeMessage(w, r, http.StatusNotFound, "ErrOutOfRange")
	case errors.Is(err, attempt.ErrExamMissing):
		writeMessage(w, r, http.StatusConflict, "ErrExamMissing")
	case errors.Is(err, session.ErrNoImporter):
		writeMessage(w, r, http.StatusNotImplemented, "ErrNoImporter")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "ErrInternal")
	}
}

// writeState responds with the controller state.
func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, status int) {
	v, err := h.ctl.View()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

// writeOutcome responds with the state when ok, and with 422 otherwise.
// Rejected events leave the state unchanged.
func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, ok bool) {
	if !ok {
		writeMessage(w, r, http.StatusUnprocessableEntity, "ErrRejected")
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		slog.Debug("bad request body", "path", r.URL.Path, "error", err)
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return 0, false
	}
	return i, true
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if !decode(w, r, &req) {
		return
	}
	v, err := model.ParseMainView(req.View)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if err := h.ctl.SetMainView(v); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.Leave(); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}
