package services

import (
	"context"

	"github.com/isdelr/cms-be/internal/backup"
)

// BackupServiceProvider defines the interface for backup services.
type BackupServiceProvider interface {
	RunBackup(ctx context.Context) (backup.Report, error)
	GetBackups() ([]backup.FileInfo, error)
}

// BackupService runs the post snapshot job on demand and announces the result.
type BackupService struct {
	job    *backup.Job
	events EventPublisher
}

// NewBackupService creates a new BackupService.
func NewBackupService(job *backup.Job, events EventPublisher) *BackupService {
	return &BackupService{job: job, events: publisherOrNoop(events)}
}

// RunBackup produces a snapshot and sweeps expired ones. It returns
// backup.ErrAlreadyRunning if another run is in flight.
func (s *BackupService) RunBackup(ctx context.Context) (backup.Report, error) {
	report, err := s.job.Run(ctx)
	if err != nil {
		return report, err
	}
	s.events.Publish("backup.completed", report)
	return report, nil
}

// GetBackups lists the snapshot files, newest first.
func (s *BackupService) GetBackups() ([]backup.FileInfo, error) {
	return s.job.List()
}
