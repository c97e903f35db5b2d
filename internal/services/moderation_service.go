package services

import (
	"context"
	"fmt"

	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/store"
	"rently/internal/structures"
)

// ModerationService reacts to listing change events: it notifies admins of
// new and submitted listings and runs the flag-threshold auto-recall.
// Errors bubble up to the watcher, which redelivers the event.
type ModerationService struct {
	listings      store.ListingStoreInterface
	notifications NotificationServiceInterface
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	flagThreshold int
}

func NewModerationService(conf *structures.Config, listingStore store.ListingStoreInterface, notifications NotificationServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *ModerationService {
	return &ModerationService{
		listings:      listingStore,
		notifications: notifications,
		logger:        logger,
		metrics:       metrics,
		flagThreshold: conf.Moderation.FlagThreshold,
	}
}

// HandleListingCreated notifies admins of every new listing.
func (s *ModerationService) HandleListingCreated(ctx context.Context, l *models.Listing) error {
	return s.notifications.Create(ctx,
		models.NotificationNewListing,
		"New listing created",
		fmt.Sprintf("Listing %q was created by landlord %s", l.Title, l.LandlordID),
		l.ID,
	)
}

// HandleListingUpdated inspects a before/after pair. Submission and
// threshold checks are guarded on the relevant field actually changing, so
// unrelated edits never produce duplicate notifications.
func (s *ModerationService) HandleListingUpdated(ctx context.Context, before, after *models.Listing) error {
	if before == nil || after == nil {
		return nil
	}

	if before.Status == models.StatusDraft && after.Status == models.StatusPendingReview {
		if err := s.notifications.Create(ctx,
			models.NotificationListingSubmitted,
			"Listing submitted for review",
			fmt.Sprintf("Listing %q is awaiting review", after.Title),
			after.ID,
		); err != nil {
			return err
		}
	}

	return s.checkFlagThreshold(ctx, before, after)
}

// checkFlagThreshold fires only when the flag count crosses the threshold
// with this event, never on subsequent flags of an already-over-threshold
// listing.
func (s *ModerationService) checkFlagThreshold(ctx context.Context, before, after *models.Listing) error {
	threshold := after.FlagThreshold
	if threshold <= 0 {
		threshold = s.flagThreshold
	}

	if after.FlagCount < threshold || before.FlagCount >= threshold {
		return nil
	}
	if after.Status == models.StatusRecalled {
		return nil
	}

	recalled, err := s.listings.RecallIfFlagged(ctx, after.ID, threshold)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Recall of listing %s failed: %s", after.ID, err)
		return err
	}
	if !recalled {
		// a concurrent event already performed the transition
		return nil
	}

	s.metrics.IncRecalls()
	s.logger.Infof(providers.TypeApp, "Listing %s recalled after reaching %d flags", after.ID, threshold)

	return s.notifications.Create(ctx,
		models.NotificationFlagThreshold,
		"Listing recalled",
		fmt.Sprintf("Listing %q reached %d flags and was automatically recalled", after.Title, threshold),
		after.ID,
	)
}
