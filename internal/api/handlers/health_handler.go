package handlers

import (
	"net/http"

	"github.com/isdelr/cms-be/internal/monitoring"
	"github.com/shirou/gopsutil/v3/disk"
)

// VolumeReporter supplies the latest backup volume measurement.
type VolumeReporter interface {
	Last() monitoring.VolumeStats
}

// HealthHandler reports liveness and the state of the backup volume.
type HealthHandler struct {
	backupDir string
	volume    VolumeReporter
}

// NewHealthHandler creates a new HealthHandler. volume may be nil.
func NewHealthHandler(backupDir string, volume VolumeReporter) *HealthHandler {
	return &HealthHandler{backupDir: backupDir, volume: volume}
}

// Get handles the health check request. It reports the watcher's last
// measurement and measures the volume directly until one exists.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}

	if h.volume != nil {
		if stats := h.volume.Last(); !stats.CheckedAt.IsZero() {
			resp["backupVolume"] = stats
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	usage, err := disk.UsageWithContext(r.Context(), h.backupDir)
	if err != nil {
		resp["backupVolume"] = map[string]string{"error": err.Error()}
	} else {
		resp["backupVolume"] = monitoring.VolumeStats{
			Path:        usage.Path,
			UsedPercent: usage.UsedPercent,
			FreeBytes:   usage.Free,
			TotalBytes:  usage.Total,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
