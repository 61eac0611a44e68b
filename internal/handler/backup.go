package handler

import (
	"log/slog"
	"net/http"

	"shadowcal/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

// Status handles GET /api/backup/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// RunNow handles POST /api/backup/run
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	key, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}
