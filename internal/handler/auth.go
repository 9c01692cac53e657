package handler

import (
	"log/slog"
	"net/http"
)

// requireAuth checks the password sent with HTTP basic auth. The user name
// is ignored; there is a single local user.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.auth == nil {
			next.ServeHTTP(w, r)
			return
		}
		_, password, _ := r.BasicAuth()
		ok, err := h.auth.CheckPassword(r.Context(), password)
		if err != nil {
			slog.Error("failed to check password", "error", err)
			writeMessage(w, r, http.StatusInternalServerError, "ErrInternal")
			return
		}
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="selftest", charset="UTF-8"`)
			writeMessage(w, r, http.StatusUnauthorized, "ErrUnauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
