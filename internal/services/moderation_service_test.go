package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rently/internal/models"
	"rently/internal/testutil"
)

func newTestModerationService(t *testing.T, listingStore *fakeListingStore) (*ModerationService, *fakeNotificationStore, *testutil.MockMetrics) {
	t.Helper()
	conf := testConfig()
	notificationStore := &fakeNotificationStore{}
	metrics := testutil.NewMockMetrics()
	notifications := NewNotificationService(conf, notificationStore, &testutil.MockLogger{}, metrics)
	svc := NewModerationService(conf, listingStore, notifications, &testutil.MockLogger{}, metrics)
	return svc, notificationStore, metrics
}

func flaggedListing(id string, flagCount int, status models.ListingStatus) *models.Listing {
	return &models.Listing{
		ID:        id,
		Title:     "Loft",
		Status:    status,
		FlagCount: flagCount,
	}
}

func TestModerationService_HandleListingCreated(t *testing.T) {
	svc, notificationStore, _ := newTestModerationService(t, newFakeListingStore())

	l := &models.Listing{ID: "l1", Title: "Loft", LandlordID: "u1"}
	require.NoError(t, svc.HandleListingCreated(context.Background(), l))

	created := notificationStore.byType(models.NotificationNewListing)
	require.Len(t, created, 1)
	assert.Equal(t, "l1", created[0].RelatedListingID)
}

func TestModerationService_HandleListingUpdated_SubmissionNotification(t *testing.T) {
	svc, notificationStore, _ := newTestModerationService(t, newFakeListingStore())

	before := flaggedListing("l1", 0, models.StatusDraft)
	after := flaggedListing("l1", 0, models.StatusPendingReview)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Len(t, notificationStore.byType(models.NotificationListingSubmitted), 1)
}

func TestModerationService_HandleListingUpdated_NoSubmissionOnOtherTransition(t *testing.T) {
	svc, notificationStore, _ := newTestModerationService(t, newFakeListingStore())

	before := flaggedListing("l1", 0, models.StatusPendingReview)
	after := flaggedListing("l1", 0, models.StatusPublished)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Empty(t, notificationStore.byType(models.NotificationListingSubmitted))
}

func TestModerationService_RecallOnThresholdCrossing(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, metrics := newTestModerationService(t, listingStore)

	stored := flaggedListing("l1", 5, models.StatusPublished)
	require.NoError(t, listingStore.Insert(context.Background(), stored))

	before := flaggedListing("l1", 4, models.StatusPublished)
	after := flaggedListing("l1", 5, models.StatusPublished)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	recalled, err := listingStore.Get(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecalled, recalled.Status)
	assert.Equal(t, 1, metrics.RecallCount())

	notifications := notificationStore.byType(models.NotificationFlagThreshold)
	require.Len(t, notifications, 1)
	assert.Equal(t, "l1", notifications[0].RelatedListingID)
}

func TestModerationService_NoRecallBelowThreshold(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, metrics := newTestModerationService(t, listingStore)

	before := flaggedListing("l1", 2, models.StatusPublished)
	after := flaggedListing("l1", 3, models.StatusPublished)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Equal(t, 0, listingStore.recallCalls)
	assert.Equal(t, 0, metrics.RecallCount())
	assert.Empty(t, notificationStore.byType(models.NotificationFlagThreshold))
}

func TestModerationService_NoRefireAboveThreshold(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, _ := newTestModerationService(t, listingStore)

	// both sides already over the threshold: the crossing happened earlier
	before := flaggedListing("l1", 6, models.StatusRecalled)
	after := flaggedListing("l1", 7, models.StatusRecalled)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Equal(t, 0, listingStore.recallCalls)
	assert.Empty(t, notificationStore.byType(models.NotificationFlagThreshold))
}

func TestModerationService_SkipsAlreadyRecalledListing(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, _ := newTestModerationService(t, listingStore)

	before := flaggedListing("l1", 4, models.StatusPublished)
	after := flaggedListing("l1", 5, models.StatusRecalled)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Equal(t, 0, listingStore.recallCalls)
	assert.Empty(t, notificationStore.byType(models.NotificationFlagThreshold))
}

func TestModerationService_ConcurrentRecallLosesQuietly(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, metrics := newTestModerationService(t, listingStore)

	// stored document already recalled by a concurrent event
	stored := flaggedListing("l1", 6, models.StatusRecalled)
	require.NoError(t, listingStore.Insert(context.Background(), stored))

	before := flaggedListing("l1", 4, models.StatusPublished)
	after := flaggedListing("l1", 5, models.StatusPublished)
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	assert.Equal(t, 1, listingStore.recallCalls)
	assert.Equal(t, 0, metrics.RecallCount())
	assert.Empty(t, notificationStore.byType(models.NotificationFlagThreshold))
}

func TestModerationService_PerListingThresholdOverride(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, notificationStore, _ := newTestModerationService(t, listingStore)

	stored := flaggedListing("l1", 3, models.StatusPublished)
	stored.FlagThreshold = 3
	require.NoError(t, listingStore.Insert(context.Background(), stored))

	before := flaggedListing("l1", 2, models.StatusPublished)
	before.FlagThreshold = 3
	after := flaggedListing("l1", 3, models.StatusPublished)
	after.FlagThreshold = 3
	require.NoError(t, svc.HandleListingUpdated(context.Background(), before, after))

	recalled, err := listingStore.Get(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRecalled, recalled.Status)
	assert.Len(t, notificationStore.byType(models.NotificationFlagThreshold), 1)
}

func TestModerationService_RecallErrorPropagates(t *testing.T) {
	listingStore := newFakeListingStore()
	listingStore.recallErr = errors.New("transaction aborted")
	svc, _, _ := newTestModerationService(t, listingStore)

	before := flaggedListing("l1", 4, models.StatusPublished)
	after := flaggedListing("l1", 5, models.StatusPublished)
	err := svc.HandleListingUpdated(context.Background(), before, after)
	assert.Error(t, err, "the watcher relies on the error to redeliver the event")
}

func TestModerationService_NilPairIgnored(t *testing.T) {
	svc, _, _ := newTestModerationService(t, newFakeListingStore())
	assert.NoError(t, svc.HandleListingUpdated(context.Background(), nil, flaggedListing("l1", 1, models.StatusDraft)))
	assert.NoError(t, svc.HandleListingUpdated(context.Background(), flaggedListing("l1", 1, models.StatusDraft), nil))
}
