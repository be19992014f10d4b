package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HandlePing reports that the server is up.
func (h *Handler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Error("Error writing ping response", zap.Error(err))
	}
}
