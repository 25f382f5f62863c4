package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/models"
)

type archivableStore interface {
	ListArchivable(ctx context.Context, cutoff time.Time, limit int) ([]models.Document, error)
	MarkArchived(ctx context.Context, id string, ts time.Time) error
}

// ArchiverConfig tunes the background archival sweep.
type ArchiverConfig struct {
	InactivityTTL time.Duration
	SweepInterval time.Duration
	BatchSize     int
}

// ArchiverService periodically soft-archives documents whose last activity is
// older than the inactivity window. Archival stamps archivedAt and appends an
// ARCHIVED ledger entry; the document itself is never mutated beyond that.
type ArchiverService struct {
	docs    archivableStore
	history historyStore
	cache   cacheInvalidator
	cfg     ArchiverConfig
	logger  *zap.Logger
	done    chan struct{}
}

// NewArchiverService constructs the sweeper with sane defaults.
func NewArchiverService(docs archivableStore, history historyStore, cache cacheInvalidator, cfg ArchiverConfig, logger *zap.Logger) *ArchiverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.InactivityTTL <= 0 {
		cfg.InactivityTTL = 90 * 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &ArchiverService{
		docs:    docs,
		history: history,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the sweep loop until the context is cancelled.
func (s *ArchiverService) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := s.Sweep(ctx); err != nil {
					s.logger.Error("archive sweep failed", zap.Error(err))
				} else if n > 0 {
					s.logger.Info("archive sweep completed", zap.Int("archived", n))
				}
			}
		}
	}()
}

// Wait blocks until the sweep loop has exited.
func (s *ArchiverService) Wait() {
	<-s.done
}

// Sweep archives one batch of inactive documents and returns how many moved.
func (s *ArchiverService) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.InactivityTTL)
	docs, err := s.docs.ListArchivable(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	archived := 0
	for _, doc := range docs {
		now := time.Now().UTC()
		if err := s.docs.MarkArchived(ctx, doc.ID, now); err != nil {
			s.logger.Warn("failed to archive document", zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		entry := &models.HistoryEntry{
			DocumentID: doc.ID,
			Action:     models.HistoryActionArchived,
			Status:     doc.Status,
			Stage:      models.StageArchives,
			Summary:    "Archived after inactivity",
		}
		if err := s.history.Append(ctx, entry); err != nil {
			s.logger.Warn("failed to record archival", zap.String("document_id", doc.ID), zap.Error(err))
		}
		archived++
	}
	if archived > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:summary:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	return archived, nil
}
