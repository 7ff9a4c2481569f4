package monitoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/isdelr/cms-be/internal/backup"
	"github.com/isdelr/cms-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	highUsageThreshold = 90.0
	alertCooldown      = 15 * time.Minute
)

// VolumeStats is the latest measurement of the backup volume.
type VolumeStats struct {
	Path          string    `json:"path"`
	UsedPercent   float64   `json:"usedPercent"`
	FreeBytes     uint64    `json:"freeBytes"`
	TotalBytes    uint64    `json:"totalBytes"`
	Snapshots     int       `json:"snapshots"`
	SnapshotBytes int64     `json:"snapshotBytes"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// VolumeWatcher periodically measures the volume holding the backup
// directory and raises an alert event when it is nearly full.
type VolumeWatcher struct {
	dir      string
	events   services.EventPublisher
	interval time.Duration
	usage    func(ctx context.Context, path string) (*disk.UsageStat, error)
	now      func() time.Time

	mu        sync.Mutex
	last      VolumeStats
	lastAlert time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewVolumeWatcher creates a new VolumeWatcher for dir.
func NewVolumeWatcher(dir string, events services.EventPublisher) *VolumeWatcher {
	return &VolumeWatcher{
		dir:      dir,
		events:   events,
		interval: time.Minute,
		usage:    disk.UsageWithContext,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Run starts the periodic checks and blocks until Stop is called.
func (w *VolumeWatcher) Run() {
	log.Info().Str("dir", w.dir).Msg("Starting backup volume watcher...")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on start
	w.checkAndAlert(context.Background())

	for {
		select {
		case <-w.done:
			log.Info().Msg("Stopping backup volume watcher.")
			return
		case <-ticker.C:
			w.checkAndAlert(context.Background())
		}
	}
}

// Stop halts the periodic checks.
func (w *VolumeWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

// Last returns the most recent successful measurement. CheckedAt is zero
// until the first check has succeeded.
func (w *VolumeWatcher) Last() VolumeStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *VolumeWatcher) checkAndAlert(ctx context.Context) {
	stats, err := w.measure(ctx)
	if err != nil {
		log.Warn().Err(err).Str("dir", w.dir).Msg("VolumeWatcher: Could not measure backup volume")
		return
	}

	w.mu.Lock()
	w.last = stats
	alert := stats.UsedPercent > highUsageThreshold &&
		(w.lastAlert.IsZero() || stats.CheckedAt.Sub(w.lastAlert) >= alertCooldown)
	if alert {
		w.lastAlert = stats.CheckedAt
	}
	w.mu.Unlock()

	if !alert {
		return
	}
	log.Warn().Float64("used_percent", stats.UsedPercent).Str("path", stats.Path).Msg("VolumeWatcher: Backup volume is nearly full")
	if w.events != nil {
		w.events.Publish("system.alert.disk", map[string]interface{}{
			"message": fmt.Sprintf("High disk usage (%.1f%%) on backup volume %s.", stats.UsedPercent, stats.Path),
			"stats":   stats,
		})
	}
}

func (w *VolumeWatcher) measure(ctx context.Context) (VolumeStats, error) {
	usage, err := w.usage(ctx, w.dir)
	if err != nil {
		return VolumeStats{}, err
	}
	stats := VolumeStats{
		Path:        usage.Path,
		UsedPercent: usage.UsedPercent,
		FreeBytes:   usage.Free,
		TotalBytes:  usage.Total,
		CheckedAt:   w.now(),
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return VolumeStats{}, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !backup.IsSnapshotFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Snapshots++
		stats.SnapshotBytes += info.Size()
	}
	return stats, nil
}
