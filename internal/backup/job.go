package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/isdelr/cms-be/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	ErrStoreQuery     = errors.New("store query failed")
	ErrWrite          = errors.New("snapshot write failed")
	ErrList           = errors.New("listing backup directory failed")
	ErrAlreadyRunning = errors.New("backup already in progress")
)

// RecordStore is the part of the document store the job reads from.
type RecordStore interface {
	Scan(ctx context.Context, table string) ([]store.Item, error)
}

// Options are the static per-invocation settings of a Job.
type Options struct {
	Table      string
	Dir        string
	MaxRecords int
	Retention  time.Duration
}

// Result describes the outcome of the produce phase.
type Result struct {
	Count      int       `json:"postCount"`
	Path       string    `json:"path,omitempty"`
	Empty      bool      `json:"empty"`
	BackupDate time.Time `json:"backupDate"`
}

// SweepResult describes the outcome of the retention phase.
type SweepResult struct {
	Deleted int `json:"deletedCount"`
	Failed  int `json:"failedCount"`
	Kept    int `json:"keptCount"`
}

// Report is the outcome of a full Run.
type Report struct {
	Snapshot Result      `json:"snapshot"`
	Sweep    SweepResult `json:"sweep"`
}

// FileInfo describes one snapshot file on disk.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Job produces a snapshot of the most recent records and then sweeps expired snapshots.
type Job struct {
	store  RecordStore
	opts   Options
	now    func() time.Time
	remove func(name string) error
	mu     sync.Mutex
}

// Option customises a Job.
type Option func(*Job)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// WithRemove replaces os.Remove for the retention sweep, mainly for tests.
func WithRemove(remove func(name string) error) Option {
	return func(j *Job) { j.remove = remove }
}

// NewJob creates a new Job.
func NewJob(st RecordStore, opts Options, options ...Option) *Job {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = 20
	}
	j := &Job{store: st, opts: opts, now: time.Now, remove: os.Remove}
	for _, o := range options {
		o(j)
	}
	return j
}

// Dir returns the backup directory.
func (j *Job) Dir() string {
	return j.opts.Dir
}

// Run executes Produce then Sweep. A failed produce skips the sweep; an empty one does not.
// Only one Run may be in flight per Job.
func (j *Job) Run(ctx context.Context) (Report, error) {
	if !j.mu.TryLock() {
		return Report{}, ErrAlreadyRunning
	}
	defer j.mu.Unlock()

	var report Report
	res, err := j.Produce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Backup failed")
		return report, err
	}
	report.Snapshot = res

	sweep, err := j.Sweep(ctx)
	report.Sweep = sweep
	if err != nil {
		log.Error().Err(err).Msg("Cleanup failed")
		return report, err
	}
	return report, nil
}

// Produce writes a snapshot of the newest MaxRecords records to Dir.
func (j *Job) Produce(ctx context.Context) (Result, error) {
	now := j.now()
	log.Info().Str("started_at", FormatTimestamp(now)).Str("table", j.opts.Table).Msg("Starting backup")

	if err := os.MkdirAll(j.opts.Dir, 0755); err != nil {
		return Result{}, fmt.Errorf("%w: creating %s: %w", ErrWrite, j.opts.Dir, err)
	}

	items, err := j.store.Scan(ctx, j.opts.Table)
	if err != nil {
		return Result{}, fmt.Errorf("%w: scanning %s: %w", ErrStoreQuery, j.opts.Table, err)
	}
	if len(items) == 0 {
		log.Info().Str("table", j.opts.Table).Msg("No posts found to backup")
		return Result{Empty: true, BackupDate: now}, nil
	}

	posts := store.NewestFirst(items, j.opts.MaxRecords)
	data, err := encode(Snapshot{
		BackupDate: FormatTimestamp(now),
		PostCount:  len(posts),
		Posts:      posts,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: encoding snapshot: %w", ErrWrite, err)
	}

	path := filepath.Join(j.opts.Dir, FileName(now))
	if err := writeNew(path, data); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	log.Info().Int("post_count", len(posts)).Str("path", path).Msg("Backed up posts")
	return Result{Count: len(posts), Path: path, BackupDate: now}, nil
}

// Sweep deletes snapshot files older than the retention window. Per-file
// failures are logged and counted; only an unreadable directory is fatal.
func (j *Job) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	entries, err := os.ReadDir(j.opts.Dir)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrList, err)
	}

	now := j.now()
	for _, entry := range entries {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if entry.IsDir() || !IsSnapshotFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Could not stat backup file")
			res.Failed++
			continue
		}
		if now.Sub(info.ModTime()) <= j.opts.Retention {
			res.Kept++
			continue
		}

		if err := j.remove(filepath.Join(j.opts.Dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Could not delete old backup")
			res.Failed++
			continue
		}
		res.Deleted++
		log.Info().Str("file", entry.Name()).Msg("Deleted old backup")
	}

	if res.Deleted == 0 {
		log.Info().Msg("No old backups to clean up")
	} else {
		log.Info().Int("deleted_count", res.Deleted).Msg("Cleaned up old backups")
	}
	return res, nil
}

// List returns the snapshot files in Dir, newest first. A missing directory yields no files.
func (j *Job) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(j.opts.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}

	files := []FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !IsSnapshotFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.SliceStable(files, func(a, b int) bool {
		return files[a].ModTime.After(files[b].ModTime)
	})
	return files, nil
}

// writeNew writes data to a temporary file next to path and links it into
// place, so a reader never sees a partial snapshot. An existing path is never replaced.
func writeNew(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	// Unlike Rename, Link fails with EEXIST when path exists.
	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("snapshot %s already exists", path)
		}
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}
