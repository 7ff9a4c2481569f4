package monitoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

type countingPublisher struct {
	actions []string
}

func (p *countingPublisher) Publish(action string, _ interface{}) {
	p.actions = append(p.actions, action)
}

func newTestWatcher(t *testing.T, used float64) (*VolumeWatcher, *countingPublisher, *time.Time) {
	t.Helper()
	dir := t.TempDir()
	events := &countingPublisher{}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	w := NewVolumeWatcher(dir, events)
	w.now = func() time.Time { return now }
	w.usage = func(_ context.Context, path string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Path: path, UsedPercent: used, Free: 1024}, nil
	}
	return w, events, &now
}

func TestVolumeWatcherCountsSnapshots(t *testing.T) {
	w, events, _ := newTestWatcher(t, 40)
	files := []struct{ name, body string }{
		{"posts-backup-2026-10-18T00-00-00-000Z.json", "12345"},
		{"posts-backup-2026-10-19T00-00-00-000Z.json", "123"},
		{"notes.txt", "ignored"},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(w.dir, f.name), []byte(f.body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w.checkAndAlert(context.Background())

	got := w.Last()
	if got.Snapshots != 2 || got.SnapshotBytes != 8 || got.FreeBytes != 1024 {
		t.Fatalf("stats=%+v", got)
	}
	if len(events.actions) != 0 {
		t.Fatalf("unexpected alerts %v", events.actions)
	}
}

func TestVolumeWatcherAlertCooldown(t *testing.T) {
	w, events, now := newTestWatcher(t, 95)

	w.checkAndAlert(context.Background())
	*now = now.Add(5 * time.Minute)
	w.checkAndAlert(context.Background())
	if len(events.actions) != 1 || events.actions[0] != "system.alert.disk" {
		t.Fatalf("alerts=%v want one system.alert.disk", events.actions)
	}

	*now = now.Add(alertCooldown)
	w.checkAndAlert(context.Background())
	if len(events.actions) != 2 {
		t.Fatalf("alerts=%v want a second alert after cooldown", events.actions)
	}
}

func TestVolumeWatcherUsageError(t *testing.T) {
	w, events, _ := newTestWatcher(t, 95)
	w.usage = func(context.Context, string) (*disk.UsageStat, error) {
		return nil, errors.New("no such volume")
	}

	w.checkAndAlert(context.Background())

	if !w.Last().CheckedAt.IsZero() || len(events.actions) != 0 {
		t.Fatalf("failed measurement must not update stats or alert")
	}
}

func TestVolumeWatcherStop(t *testing.T) {
	w, _, _ := newTestWatcher(t, 10)
	finished := make(chan struct{})
	go func() {
		w.Run()
		close(finished)
	}()
	w.Stop()
	w.Stop()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
