package handler

import (
	"log/slog"
	"net/http"

	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/navigate"
)

func (h *Handler) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.ctl.ReviewHistory(i); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleReviewMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	m, err := model.ParseReviewMode(req.Mode)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	if err := h.ctl.SetReviewMode(m); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleReviewType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := model.ParseReviewType(req.Type)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	h.writeOutcome(w, r, h.ctl.SetReviewType(t))
}

func (h *Handler) handleReviewGoTo(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}
	h.writeOutcome(w, r, h.ctl.GoToReviewQuestion(req.Question))
}

func (h *Handler) handleReviewNavigate(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := navigate.ParseDirection(req.Direction)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	h.writeOutcome(w, r, h.ctl.NavigateReview(dir))
}

func (h *Handler) handleEditExplanation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.ctl.EditExplanation(req.Text); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// handleDraftExplanation returns a drafted explanation for the question under
// review. The draft is not applied; clients send it back through PUT
// /review/explanation once the user accepts it.
func (h *Handler) handleDraftExplanation(w http.ResponseWriter, r *http.Request) {
	if h.drafter == nil {
		writeMessage(w, r, http.StatusNotImplemented, "ErrLLMDisabled")
		return
	}
	exam, q, answer, err := h.ctl.ReviewAnswer()
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.drafter.DraftExplanation(r.Context(), exam, q, answer)
	if err != nil {
		slog.Error("draft explanation", "exam", exam.Filename, "question", q, "error", err)
		writeMessage(w, r, http.StatusBadGateway, "ErrInternal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": q, "explanation": text})
}
