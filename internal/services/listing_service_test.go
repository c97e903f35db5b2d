package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rently/internal/models"
	"rently/internal/testutil"
	"rently/internal/watch"
)

func newTestListingService(t *testing.T, listingStore *fakeListingStore) (*ListingService, *watch.Bus) {
	t.Helper()
	conf := testConfig()
	bus := watch.NewBus(conf)
	analytics := NewAnalyticsService(conf, newFakeAnalyticsStore(), newTestEntityCache(), &testutil.MockLogger{}, testutil.NewMockMetrics())
	svc := NewListingService(conf, listingStore, analytics, bus, &testutil.MockLogger{})
	return svc.(*ListingService), bus
}

func drainEvent(t *testing.T, bus *watch.Bus) watch.Event {
	t.Helper()
	select {
	case ev := <-bus.Events():
		return ev
	default:
		t.Fatal("expected a published event")
		return watch.Event{}
	}
}

func TestListingService_Create(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	l, err := svc.Create(context.Background(), CreateListingInput{
		LandlordID:    "u1",
		Title:         "Sunny Loft Apartment",
		City:          "Berlin",
		PricePerMonth: 1450,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, models.StatusDraft, l.Status)
	assert.Equal(t, "sunny-loft-apartment", l.Slug)
	assert.Contains(t, l.SearchKeywords, "loft")
	assert.Contains(t, l.SearchKeywords, "berlin")
	assert.Equal(t, 5, l.FlagThreshold)

	ev := drainEvent(t, bus)
	assert.Equal(t, watch.EventListingCreated, ev.Type)
	assert.Nil(t, ev.Before)
	assert.Equal(t, l.ID, ev.After.ID)
}

func TestListingService_Create_RequiresTitleAndLandlord(t *testing.T) {
	svc, _ := newTestListingService(t, newFakeListingStore())

	_, err := svc.Create(context.Background(), CreateListingInput{Title: "No landlord"})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateListingInput{LandlordID: "u1"})
	assert.Error(t, err)
}

func TestListingService_Update_RegeneratesKeywordsOnTitleChange(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	created, err := svc.Create(context.Background(), CreateListingInput{
		LandlordID: "u1", Title: "Sunny Loft", City: "Berlin",
	})
	require.NoError(t, err)
	drainEvent(t, bus)

	title := "Cozy Studio"
	updated, err := svc.Update(context.Background(), created.ID, UpdateListingInput{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "cozy-studio", updated.Slug)
	assert.Contains(t, updated.SearchKeywords, "studio")
	assert.NotContains(t, updated.SearchKeywords, "loft")

	ev := drainEvent(t, bus)
	assert.Equal(t, watch.EventListingUpdated, ev.Type)
	assert.Equal(t, "Sunny Loft", ev.Before.Title)
	assert.Equal(t, "Cozy Studio", ev.After.Title)
}

func TestListingService_Update_KeepsKeywordsWhenUnrelatedFieldChanges(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	created, err := svc.Create(context.Background(), CreateListingInput{
		LandlordID: "u1", Title: "Sunny Loft", City: "Berlin",
	})
	require.NoError(t, err)
	drainEvent(t, bus)

	price := 1600.0
	updated, err := svc.Update(context.Background(), created.ID, UpdateListingInput{PricePerMonth: &price})
	require.NoError(t, err)

	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, created.SearchKeywords, updated.SearchKeywords)
	assert.Equal(t, 1600.0, updated.PricePerMonth)
}

func TestListingService_ChangeStatus(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	created, err := svc.Create(context.Background(), CreateListingInput{LandlordID: "u1", Title: "Loft"})
	require.NoError(t, err)
	drainEvent(t, bus)

	updated, err := svc.ChangeStatus(context.Background(), created.ID, models.StatusPendingReview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, updated.Status)

	ev := drainEvent(t, bus)
	assert.Equal(t, models.StatusDraft, ev.Before.Status)
	assert.Equal(t, models.StatusPendingReview, ev.After.Status)
}

func TestListingService_ChangeStatus_RejectsInvalidTransition(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	created, err := svc.Create(context.Background(), CreateListingInput{LandlordID: "u1", Title: "Loft"})
	require.NoError(t, err)
	drainEvent(t, bus)

	_, err = svc.ChangeStatus(context.Background(), created.ID, models.StatusPublished)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, bus.Pending(), "rejected transition must not publish an event")
}

func TestListingService_ChangeStatus_SetsArchivedAt(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	created, err := svc.Create(context.Background(), CreateListingInput{LandlordID: "u1", Title: "Loft"})
	require.NoError(t, err)
	drainEvent(t, bus)

	for _, next := range []models.ListingStatus{models.StatusPendingReview, models.StatusPublished, models.StatusArchived} {
		_, err = svc.ChangeStatus(context.Background(), created.ID, next)
		require.NoError(t, err)
		drainEvent(t, bus)
	}

	archived, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, now, *archived.ArchivedAt)
}

func TestListingService_Flag(t *testing.T) {
	listingStore := newFakeListingStore()
	svc, bus := newTestListingService(t, listingStore)

	created, err := svc.Create(context.Background(), CreateListingInput{LandlordID: "u1", Title: "Loft"})
	require.NoError(t, err)
	drainEvent(t, bus)

	flagged, err := svc.Flag(context.Background(), created.ID, "reporter-1", "misleading photos")
	require.NoError(t, err)

	assert.Equal(t, 1, flagged.FlagCount)
	require.Len(t, flagged.Flags, 1)
	assert.Equal(t, "reporter-1", flagged.Flags[0].ReporterID)

	ev := drainEvent(t, bus)
	assert.Equal(t, watch.EventListingUpdated, ev.Type)
	assert.Equal(t, 0, ev.Before.FlagCount)
	assert.Equal(t, 1, ev.After.FlagCount)
}

func TestListingService_Flag_SurvivesAnalyticsFailure(t *testing.T) {
	listingStore := newFakeListingStore()
	conf := testConfig()
	bus := watch.NewBus(conf)
	analyticsStore := newFakeAnalyticsStore()
	analyticsStore.incrementErr = errors.New("analytics down")
	logger := &testutil.MockLogger{}
	analytics := NewAnalyticsService(conf, analyticsStore, newTestEntityCache(), logger, testutil.NewMockMetrics())
	svc := NewListingService(conf, listingStore, analytics, bus, logger)

	created, err := svc.Create(context.Background(), CreateListingInput{LandlordID: "u1", Title: "Loft"})
	require.NoError(t, err)
	<-bus.Events()

	flagged, err := svc.Flag(context.Background(), created.ID, "reporter-1", "spam")
	require.NoError(t, err, "flag must land even when the metric write fails")
	assert.Equal(t, 1, flagged.FlagCount)
	assert.Equal(t, 1, logger.LogCount("warn"))
}

func TestListingService_Get_NotFound(t *testing.T) {
	svc, _ := newTestListingService(t, newFakeListingStore())
	_, err := svc.Get(context.Background(), "missing")
	assert.Error(t, err)
}
