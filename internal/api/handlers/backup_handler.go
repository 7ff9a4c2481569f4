package handlers

import (
	"net/http"

	"github.com/isdelr/cms-be/internal/services"
	"github.com/rs/zerolog/log"
)

// BackupHandler handles HTTP requests related to post snapshots.
type BackupHandler struct {
	service services.BackupServiceProvider
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(service services.BackupServiceProvider) *BackupHandler {
	return &BackupHandler{service: service}
}

// GetAll handles the request to list snapshot files.
func (h *BackupHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	backups, err := h.service.GetBackups()
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve backups")
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// Create runs the snapshot job now and reports its outcome.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunBackup(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Manual backup failed")
		writeServiceError(w, err, "Backup failed: "+err.Error())
		return
	}

	status := http.StatusCreated
	if report.Snapshot.Empty {
		status = http.StatusOK
	}
	writeJSON(w, status, report)
}
