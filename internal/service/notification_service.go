package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
	"github.com/campusdocs/doctrack-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string, ts time.Time) error
	MarkAllRead(ctx context.Context, userID string, ts time.Time) error
}

const jobTypeNotify = "notification.deliver"

type notifyJob struct {
	UserID  string
	Payload dto.NotificationPayload
}

// NotificationService persists notifications and implements Dispatcher.
// Delivery runs through a background queue so workflow calls never block on
// it; when the queue is unavailable the write happens inline.
type NotificationService struct {
	store  notificationStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService wires the store and starts the delivery queue.
func NewNotificationService(store notificationStore, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{store: store, logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handleJob, cfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// QueueDepth reports undelivered jobs waiting in the buffer.
func (s *NotificationService) QueueDepth() int {
	return s.queue.Depth()
}

// Notify enqueues one notification for delivery.
func (s *NotificationService) Notify(userID string, payload dto.NotificationPayload) {
	if userID == "" {
		return
	}
	job := jobs.Job{
		ID:      uuid.New().String(),
		Type:    jobTypeNotify,
		Payload: notifyJob{UserID: userID, Payload: payload},
	}
	if err := s.queue.Enqueue(job); err != nil {
		// Queue not running (tests, shutdown). Deliver inline instead.
		if persistErr := s.persist(context.Background(), userID, payload); persistErr != nil {
			s.logger.Warn("failed to deliver notification inline",
				zap.String("user_id", userID), zap.Error(persistErr))
		}
	}
}

// NotifyMany fans one payload out to several users.
func (s *NotificationService) NotifyMany(userIDs []string, payload dto.NotificationPayload) {
	for _, id := range userIDs {
		s.Notify(id, payload)
	}
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notifyJob)
	if !ok {
		s.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.persist(ctx, payload.UserID, payload.Payload)
}

func (s *NotificationService) persist(ctx context.Context, userID string, payload dto.NotificationPayload) error {
	notification := &models.Notification{
		UserID:      userID,
		Title:       payload.Title,
		Description: payload.Description,
		Type:        models.NotificationType(payload.Type),
		Link:        payload.Link,
		Metadata:    payload.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	return s.store.Create(ctx, notification)
}

// List returns a user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	notifications, err := s.store.List(ctx, models.NotificationFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// CountUnread returns the badge count for a user.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one of the user's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.store.MarkRead(ctx, id, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification for the user read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.store.MarkAllRead(ctx, userID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}
