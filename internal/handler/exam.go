package handler

import (
	"net/http"

	"github.com/pavelanni/selftest/internal/model"
	"github.com/pavelanni/selftest/internal/navigate"
)

type questionRequest struct {
	Question int `json:"question"`
}

type directionRequest struct {
	Direction string `json:"direction"`
}

// answerRequest carries exactly one answer kind, matching the type of the
// current question.
type answerRequest struct {
	Choice  *int    `json:"choice,omitempty"`
	Choices []bool  `json:"choices,omitempty"`
	Text    *string `json:"text,omitempty"`
	Order   []int   `json:"order,omitempty"`
}

func (h *Handler) handleCover(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.ctl.InitExam(i); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.StartExam(); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.PauseTimer(); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

func (h *Handler) handleGoTo(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decode(w, r, &req) {
		return
	}
	h.writeOutcome(w, r, h.ctl.GoTo(req.Question))
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := navigate.ParseDirection(req.Direction)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	h.writeOutcome(w, r, h.ctl.Navigate(dir))
}

func (h *Handler) handleExamMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	m, err := model.ParseExamMode(req.Mode)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	h.writeOutcome(w, r, h.ctl.SetExamMode(m))
}

func (h *Handler) handleBookmark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question int  `json:"question"`
		Marked   bool `json:"marked"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.writeOutcome(w, r, h.ctl.Bookmark(req.Question, req.Marked))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	var ok bool
	switch {
	case req.Choice != nil:
		ok = h.ctl.AnswerMultipleChoice(*req.Choice)
	case req.Choices != nil:
		ok = h.ctl.AnswerMultipleAnswer(req.Choices)
	case req.Text != nil:
		ok = h.ctl.AnswerFillIn(*req.Text)
	case req.Order != nil:
		ok = h.ctl.AnswerOrder(req.Order)
	default:
		writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
		return
	}
	h.writeOutcome(w, r, ok)
}

func (h *Handler) handleToggleExplanation(w http.ResponseWriter, r *http.Request) {
	h.writeOutcome(w, r, h.ctl.ToggleExplanation())
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	report, err := h.ctl.EndExam()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	rec, err := h.ctl.SaveSession()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.ctl.ResumeSession(i); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}
