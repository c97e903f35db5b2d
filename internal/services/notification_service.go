package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/store"
	"rently/internal/structures"
)

type NotificationServiceInterface interface {
	Create(ctx context.Context, typ models.NotificationType, title, message, listingID string) error
	List(ctx context.Context, limit int) ([]models.AdminNotification, error)
	MarkRead(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type NotificationService struct {
	store         store.NotificationStoreInterface
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	retentionDays int
	clock         func() time.Time
}

func NewNotificationService(conf *structures.Config, notificationStore store.NotificationStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) NotificationServiceInterface {
	return &NotificationService{
		store:         notificationStore,
		logger:        logger,
		metrics:       metrics,
		retentionDays: conf.Notifications.RetentionDays,
		clock:         time.Now,
	}
}

func (s *NotificationService) Create(ctx context.Context, typ models.NotificationType, title, message, listingID string) error {
	n := &models.AdminNotification{
		ID:               uuid.NewString(),
		Type:             typ,
		Title:            title,
		Message:          message,
		RelatedListingID: listingID,
		CreatedAt:        s.clock().UTC(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("create %s notification: %w", typ, err)
	}
	s.metrics.IncNotifications(string(typ))
	return nil
}

func (s *NotificationService) List(ctx context.Context, limit int) ([]models.AdminNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.List(ctx, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id)
}

// CleanupExpired deletes read notifications older than the retention
// period. Unread notifications are kept regardless of age.
func (s *NotificationService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.clock().UTC().AddDate(0, 0, -s.retentionDays)
	n, err := s.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Infof(providers.TypeApp, "Cleaned up %d read admin notifications older than %d days", n, s.retentionDays)
	}
	return n, nil
}
