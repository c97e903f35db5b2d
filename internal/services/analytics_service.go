package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"rently/internal/cache"
	"rently/internal/models"
	"rently/internal/providers"
	"rently/internal/store"
	"rently/internal/structures"
)

type AnalyticsServiceInterface interface {
	IncrementMetric(ctx context.Context, listingID string, metric models.MetricType) error
	DecrementMetric(ctx context.Context, listingID string, metric models.MetricType) error
	GetListingAnalytics(ctx context.Context, listingID string) (*models.ListingAnalytics, error)
	Last24hMetrics(ctx context.Context, listingIDs []string) (map[string]models.MetricTotals, error)
	RollingWindowMetrics(ctx context.Context, listingIDs []string, days int) (map[string]models.WindowComparison, error)
}

// AnalyticsService maintains the per-listing lifetime counters and their
// hourly/daily rollups. The three writes per delta are independent
// operations: a crash between them leaves the rollups and the parent
// counter temporarily inconsistent, which is acceptable for display-only
// metrics.
type AnalyticsService struct {
	store      store.AnalyticsStoreInterface
	cache      *cache.Cache
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	windowDays int
	clock      func() time.Time
}

func NewAnalyticsService(conf *structures.Config, analyticsStore store.AnalyticsStoreInterface, entityCache *cache.Cache, logger providers.Logger, metrics providers.MetricsProviderInterface) AnalyticsServiceInterface {
	return &AnalyticsService{
		store:      analyticsStore,
		cache:      entityCache,
		logger:     logger,
		metrics:    metrics,
		windowDays: conf.Analytics.RollingWindowDays,
		clock:      time.Now,
	}
}

func analyticsCacheKey(listingID string) string {
	return "analytics:" + listingID
}

func (s *AnalyticsService) IncrementMetric(ctx context.Context, listingID string, metric models.MetricType) error {
	return s.applyDelta(ctx, listingID, metric, 1)
}

func (s *AnalyticsService) DecrementMetric(ctx context.Context, listingID string, metric models.MetricType) error {
	return s.applyDelta(ctx, listingID, metric, -1)
}

func (s *AnalyticsService) applyDelta(ctx context.Context, listingID string, metric models.MetricType, delta int) error {
	if !metric.Valid() {
		return fmt.Errorf("unknown metric type %q", metric)
	}

	err := s.store.IncrementParent(ctx, listingID, metric, delta)
	if errors.Is(err, store.ErrNotFound) {
		// first metric for this listing: initialize lazily, retry once
		if err = s.store.InitParent(ctx, listingID); err != nil {
			return err
		}
		err = s.store.IncrementParent(ctx, listingID, metric, delta)
	}
	if err != nil {
		return err
	}

	now := s.clock().UTC()
	if err := s.store.IncrementDaily(ctx, listingID, models.DayKey(now), metric, delta); err != nil {
		return err
	}
	if err := s.store.IncrementHourly(ctx, listingID, models.HourKey(now), metric, delta); err != nil {
		return err
	}

	s.metrics.IncMetricWrites(string(metric))
	s.refreshCache(ctx, listingID)
	return nil
}

// refreshCache invalidates then eagerly repopulates the cached counter
// document. A failed refetch just leaves the entry cold.
func (s *AnalyticsService) refreshCache(ctx context.Context, listingID string) {
	key := analyticsCacheKey(listingID)
	s.cache.Invalidate(key)

	a, err := s.store.Parent(ctx, listingID)
	if err != nil {
		s.logger.Debugf(providers.TypeApp, "Analytics cache refresh for %s skipped: %s", listingID, err)
		return
	}
	if data, err := json.Marshal(a); err == nil {
		s.cache.Set(key, data)
	}
}

func (s *AnalyticsService) GetListingAnalytics(ctx context.Context, listingID string) (*models.ListingAnalytics, error) {
	if data, ok := s.cache.Get(analyticsCacheKey(listingID)); ok {
		var a models.ListingAnalytics
		if err := json.Unmarshal(data, &a); err == nil {
			return &a, nil
		}
		s.cache.Invalidate(analyticsCacheKey(listingID))
	}

	a, err := s.store.Parent(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(a); err == nil {
		s.cache.Set(analyticsCacheKey(listingID), data)
	}
	return a, nil
}

// Last24hMetrics sums hourly buckets across the 24 trailing UTC-hour keys
// for each requested listing. Listings with no activity map to zero totals.
func (s *AnalyticsService) Last24hMetrics(ctx context.Context, listingIDs []string) (map[string]models.MetricTotals, error) {
	keys := models.Last24hKeys(s.clock())
	buckets, err := s.store.HourlyBuckets(ctx, listingIDs, keys)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]models.MetricTotals, len(listingIDs))
	for _, id := range listingIDs {
		totals[id] = models.MetricTotals{}
	}
	for i := range buckets {
		t := totals[buckets[i].ListingID]
		t.Add(&buckets[i])
		totals[buckets[i].ListingID] = t
	}
	return totals, nil
}

// RollingWindowMetrics partitions daily buckets into the current and
// previous days-long periods and sums each side. days <= 0 falls back to
// the configured window.
func (s *AnalyticsService) RollingWindowMetrics(ctx context.Context, listingIDs []string, days int) (map[string]models.WindowComparison, error) {
	if days <= 0 {
		days = s.windowDays
	}
	now := s.clock()
	currentKeys := models.WindowDayKeys(now, days, 0)
	previousKeys := models.WindowDayKeys(now, days, 1)

	currentSet := make(map[string]struct{}, len(currentKeys))
	for _, k := range currentKeys {
		currentSet[k] = struct{}{}
	}

	buckets, err := s.store.DailyBuckets(ctx, listingIDs, append(currentKeys, previousKeys...))
	if err != nil {
		return nil, err
	}

	comparisons := make(map[string]models.WindowComparison, len(listingIDs))
	for _, id := range listingIDs {
		comparisons[id] = models.WindowComparison{}
	}
	for i := range buckets {
		c := comparisons[buckets[i].ListingID]
		if _, ok := currentSet[buckets[i].BucketKey]; ok {
			c.Current.Add(&buckets[i])
		} else {
			c.Previous.Add(&buckets[i])
		}
		comparisons[buckets[i].ListingID] = c
	}
	return comparisons, nil
}
