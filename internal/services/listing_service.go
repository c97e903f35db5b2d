package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/search"
	"rently/internal/store"
	"rently/internal/structures"
	"rently/internal/watch"
)

// ErrInvalidTransition is returned when a requested status change is not
// allowed from the listing's current state.
var ErrInvalidTransition = errors.New("invalid status transition")

type CreateListingInput struct {
	LandlordID    string  `json:"landlord_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	PricePerMonth float64 `json:"price_per_month"`
}

type UpdateListingInput struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	City          *string  `json:"city,omitempty"`
	Address       *string  `json:"address,omitempty"`
	PricePerMonth *float64 `json:"price_per_month,omitempty"`
}

type ListingServiceInterface interface {
	Create(ctx context.Context, input CreateListingInput) (*models.Listing, error)
	Get(ctx context.Context, id string) (*models.Listing, error)
	Update(ctx context.Context, id string, input UpdateListingInput) (*models.Listing, error)
	ChangeStatus(ctx context.Context, id string, next models.ListingStatus) (*models.Listing, error)
	Flag(ctx context.Context, id, reporterID, reason string) (*models.Listing, error)
	RecordView(ctx context.Context, id string) error
	Bookmark(ctx context.Context, id string) error
	Unbookmark(ctx context.Context, id string) error
}

type ListingService struct {
	store         store.ListingStoreInterface
	analytics     AnalyticsServiceInterface
	bus           *watch.Bus
	logger        providers.Logger
	flagThreshold int
	clock         func() time.Time
}

func NewListingService(conf *structures.Config, listingStore store.ListingStoreInterface, analytics AnalyticsServiceInterface, bus *watch.Bus, logger providers.Logger) ListingServiceInterface {
	return &ListingService{
		store:         listingStore,
		analytics:     analytics,
		bus:           bus,
		logger:        logger,
		flagThreshold: conf.Moderation.FlagThreshold,
		clock:         time.Now,
	}
}

func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if input.Title == "" || input.LandlordID == "" {
		return nil, fmt.Errorf("title and landlord_id are required")
	}

	now := s.clock().UTC()
	listing := &models.Listing{
		ID:             uuid.NewString(),
		LandlordID:     input.LandlordID,
		Title:          input.Title,
		Description:    input.Description,
		City:           input.City,
		Address:        input.Address,
		PricePerMonth:  input.PricePerMonth,
		Slug:           search.Slugify(input.Title),
		SearchKeywords: search.Keywords(input.Title, input.City),
		Status:         models.StatusDraft,
		FlagThreshold:  s.flagThreshold,
		Flags:          []models.Flag{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Insert(ctx, listing); err != nil {
		return nil, err
	}

	s.bus.Publish(watch.Event{Type: watch.EventListingCreated, After: listing.Clone()})
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	return s.store.Get(ctx, id)
}

// Update applies the changed fields, regenerating the slug and search
// keywords in the same write whenever title or city change, so the search
// index can never diverge from the content.
func (s *ListingService) Update(ctx context.Context, id string, input UpdateListingInput) (*models.Listing, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if input.Title != nil {
		updated.Title = *input.Title
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.City != nil {
		updated.City = *input.City
	}
	if input.Address != nil {
		updated.Address = *input.Address
	}
	if input.PricePerMonth != nil {
		updated.PricePerMonth = *input.PricePerMonth
	}
	if updated.Title != current.Title || updated.City != current.City {
		updated.Slug = search.Slugify(updated.Title)
		updated.SearchKeywords = search.Keywords(updated.Title, updated.City)
	}
	updated.UpdatedAt = s.clock().UTC()

	before, err := s.store.Replace(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(watch.Event{Type: watch.EventListingUpdated, Before: before, After: updated.Clone()})
	return updated, nil
}

// ChangeStatus performs a user-initiated status transition. The recalled
// state is reserved for the moderation workflow.
func (s *ListingService) ChangeStatus(ctx context.Context, id string, next models.ListingStatus) (*models.Listing, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	updated := current.Clone()
	updated.Status = next
	now := s.clock().UTC()
	updated.UpdatedAt = now
	if next == models.StatusArchived {
		updated.ArchivedAt = &now
	}

	before, err := s.store.Replace(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(watch.Event{Type: watch.EventListingUpdated, Before: before, After: updated.Clone()})
	return updated, nil
}

// Flag records a user flag: the flag lands on the listing document, the
// flag metric feeds the analytics rollups, and the change event lets the
// moderation workflow evaluate the threshold.
func (s *ListingService) Flag(ctx context.Context, id, reporterID, reason string) (*models.Listing, error) {
	flag := models.Flag{
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  s.clock().UTC(),
	}

	before, after, err := s.store.AddFlag(ctx, id, flag)
	if err != nil {
		return nil, err
	}

	if err := s.analytics.IncrementMetric(ctx, id, models.MetricFlag); err != nil {
		s.logger.Warnf(providers.TypeApp, "Flag metric for listing %s not recorded: %s", id, err)
	}

	s.bus.Publish(watch.Event{Type: watch.EventListingUpdated, Before: before, After: after})
	return after, nil
}

func (s *ListingService) RecordView(ctx context.Context, id string) error {
	return s.analytics.IncrementMetric(ctx, id, models.MetricView)
}

func (s *ListingService) Bookmark(ctx context.Context, id string) error {
	return s.analytics.IncrementMetric(ctx, id, models.MetricBookmark)
}

func (s *ListingService) Unbookmark(ctx context.Context, id string) error {
	return s.analytics.DecrementMetric(ctx, id, models.MetricBookmark)
}
