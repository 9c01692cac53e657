package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	appI18n "github.com/pavelanni/selftest/internal/i18n"
)

const maxUploadSize = 4 << 20

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.ctl.Exams()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctl.History())
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctl.Sessions())
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	deleted, err := h.ctl.DeleteExam(r.Context(), i)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !deleted {
		writeMessage(w, r, http.StatusForbidden, "ErrProtectedExam")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.ctl.DeleteHistory(i); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	i, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := h.ctl.DeleteSession(i); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImport accepts either a multipart upload in the "exam" field or a
// JSON body {"url": "..."} naming a remote document.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var (
		filename string
		data     []byte
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
			return
		}
		file, header, err := r.FormFile("exam")
		if err != nil {
			writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
			return
		}
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			writeError(w, r, err)
			return
		}
		filename = header.Filename
	} else {
		var req struct {
			URL string `json:"url"`
		}
		if !decode(w, r, &req) {
			return
		}
		if h.fetcher == nil || req.URL == "" {
			writeMessage(w, r, http.StatusBadRequest, "ErrBadRequest")
			return
		}
		var err error
		filename, data, err = h.fetcher.Fetch(r.Context(), req.URL)
		if err != nil {
			slog.Warn("fetch remote exam", "url", req.URL, "error", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error:    appI18n.Tp(r.Context(), "ImportProblems", 1),
				Problems: []string{err.Error()},
			})
			return
		}
	}

	problems, err := h.ctl.LoadRemoteExam(r.Context(), filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:    appI18n.Tp(r.Context(), "ImportProblems", len(problems)),
			Problems: problems,
		})
		return
	}
	slog.Info("exam imported", "filename", filename)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": appI18n.Td(r.Context(), "ExamImported", map[string]any{"Filename": filename}),
	})
}
