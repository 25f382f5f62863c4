package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/pkg/jobs"
)

type fileRemover interface {
	Delete(filename string) error
}

const jobTypeCleanup = "attachment.cleanup"

// StorageCleaner removes superseded attachment files in the background so the
// workflow never blocks on disk IO. It implements AttachmentCleaner.
type StorageCleaner struct {
	storage fileRemover
	queue   *jobs.Queue
	logger  *zap.Logger
}

// NewStorageCleaner wires the cleaner onto its own small queue.
func NewStorageCleaner(storage fileRemover, logger *zap.Logger) *StorageCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &StorageCleaner{storage: storage, logger: logger}
	c.queue = jobs.NewQueue("attachment-cleanup", c.handleJob, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return c
}

// Start launches the cleanup worker.
func (c *StorageCleaner) Start(ctx context.Context) {
	c.queue.Start(ctx)
}

// Stop drains the cleanup worker.
func (c *StorageCleaner) Stop() {
	c.queue.Stop()
}

// ScheduleDelete enqueues removal of a stored file. Failures are logged,
// never surfaced; a leaked file is preferable to a failed transition.
func (c *StorageCleaner) ScheduleDelete(filename string) {
	if filename == "" {
		return
	}
	err := c.queue.Enqueue(jobs.Job{
		ID:      uuid.New().String(),
		Type:    jobTypeCleanup,
		Payload: filename,
	})
	if err != nil {
		if delErr := c.storage.Delete(filename); delErr != nil {
			c.logger.Warn("failed to delete attachment inline", zap.String("file", filename), zap.Error(delErr))
		}
	}
}

func (c *StorageCleaner) handleJob(ctx context.Context, job jobs.Job) error {
	filename, ok := job.Payload.(string)
	if !ok {
		c.logger.Error("unexpected cleanup job payload", zap.String("job_id", job.ID))
		return nil
	}
	return c.storage.Delete(filename)
}
