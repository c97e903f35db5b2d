package services

import (
	"context"
	"sync"
	"time"

	"rently/internal/cache"
	"rently/internal/models"
	"rently/internal/store"
	"rently/internal/structures"
	"rently/internal/testutil"
)

func testConfig() *structures.Config {
	return &structures.Config{
		EntityCache: structures.EntityCacheConfig{
			TTL:           time.Minute,
			SweepInterval: time.Minute,
		},
		Analytics: structures.AnalyticsConfig{RollingWindowDays: 30},
		Moderation: structures.ModerationConfig{
			FlagThreshold:   5,
			EventBufferSize: 16,
			MaxEventRetries: 2,
		},
		Auth: structures.AuthConfig{
			IdentityURL:     "http://identity.local/verify",
			JWTSecret:       "test-secret",
			MaxAttempts:     5,
			LockoutDuration: 15 * time.Minute,
			SessionTTL:      time.Hour,
			SweepInterval:   time.Minute,
			RetryAttempts:   3,
			RetryBaseDelay:  time.Millisecond,
		},
		Notifications: structures.NotificationsConfig{
			RetentionDays:   30,
			CleanupInterval: time.Hour,
		},
		Chat: structures.ChatConfig{PageSize: 2},
	}
}

func newTestEntityCache() *cache.Cache {
	conf := testConfig()
	compressor, _ := cache.NewZstdCompressor()
	mirror := cache.NewFileMirror(conf, compressor, &testutil.MockLogger{})
	return cache.NewCache(conf, mirror, &testutil.MockLogger{})
}

// fakeAnalyticsStore keeps counters in memory and mimics the lazy parent
// initialization contract of the real store.
type fakeAnalyticsStore struct {
	mu      sync.Mutex
	parents map[string]*models.ListingAnalytics
	daily   map[string]*models.RollupBucket
	hourly  map[string]*models.RollupBucket

	parentIncrements int
	initCalls        int

	incrementErr error
	bucketErr    error
}

func newFakeAnalyticsStore() *fakeAnalyticsStore {
	return &fakeAnalyticsStore{
		parents: make(map[string]*models.ListingAnalytics),
		daily:   make(map[string]*models.RollupBucket),
		hourly:  make(map[string]*models.RollupBucket),
	}
}

func (f *fakeAnalyticsStore) IncrementParent(_ context.Context, listingID string, metric models.MetricType, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.parentIncrements++
	a, ok := f.parents[listingID]
	if !ok {
		return store.ErrNotFound
	}
	applyMetric(&a.ViewCount, &a.BookmarkCount, &a.FlagCount, metric, delta)
	return nil
}

func (f *fakeAnalyticsStore) InitParent(_ context.Context, listingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	if _, ok := f.parents[listingID]; !ok {
		f.parents[listingID] = &models.ListingAnalytics{ListingID: listingID}
	}
	return nil
}

func (f *fakeAnalyticsStore) Parent(_ context.Context, listingID string) (*models.ListingAnalytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.parents[listingID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAnalyticsStore) IncrementDaily(_ context.Context, listingID, key string, metric models.MetricType, delta int) error {
	return f.incrementBucket(f.daily, listingID, key, metric, delta)
}

func (f *fakeAnalyticsStore) IncrementHourly(_ context.Context, listingID, key string, metric models.MetricType, delta int) error {
	return f.incrementBucket(f.hourly, listingID, key, metric, delta)
}

func (f *fakeAnalyticsStore) incrementBucket(buckets map[string]*models.RollupBucket, listingID, key string, metric models.MetricType, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bucketErr != nil {
		return f.bucketErr
	}
	id := listingID + ":" + key
	b, ok := buckets[id]
	if !ok {
		b = &models.RollupBucket{ID: id, ListingID: listingID, BucketKey: key}
		buckets[id] = b
	}
	applyMetric(&b.ViewCount, &b.BookmarkCount, &b.FlagCount, metric, delta)
	return nil
}

func (f *fakeAnalyticsStore) DailyBuckets(_ context.Context, listingIDs, keys []string) ([]models.RollupBucket, error) {
	return f.selectBuckets(f.daily, listingIDs, keys)
}

func (f *fakeAnalyticsStore) HourlyBuckets(_ context.Context, listingIDs, keys []string) ([]models.RollupBucket, error) {
	return f.selectBuckets(f.hourly, listingIDs, keys)
}

func (f *fakeAnalyticsStore) selectBuckets(buckets map[string]*models.RollupBucket, listingIDs, keys []string) ([]models.RollupBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		ids[id] = struct{}{}
	}
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}
	var out []models.RollupBucket
	for _, b := range buckets {
		if _, ok := ids[b.ListingID]; !ok {
			continue
		}
		if _, ok := keySet[b.BucketKey]; !ok {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func applyMetric(views, bookmarks, flags *int, metric models.MetricType, delta int) {
	switch metric {
	case models.MetricView:
		*views += delta
	case models.MetricBookmark:
		*bookmarks += delta
	case models.MetricFlag:
		*flags += delta
	}
}

// fakeListingStore is an in-memory ListingStoreInterface.
type fakeListingStore struct {
	mu       sync.Mutex
	listings map[string]*models.Listing

	recallCalls int
	recallErr   error
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[string]*models.Listing)}
}

func (f *fakeListingStore) Insert(_ context.Context, l *models.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = l.Clone()
	return nil
}

func (f *fakeListingStore) Get(_ context.Context, id string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return l.Clone(), nil
}

func (f *fakeListingStore) Replace(_ context.Context, updated *models.Listing) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before, ok := f.listings[updated.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	f.listings[updated.ID] = updated.Clone()
	return before, nil
}

func (f *fakeListingStore) AddFlag(_ context.Context, id string, flag models.Flag) (*models.Listing, *models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	before := l.Clone()
	l.Flags = append(l.Flags, flag)
	l.FlagCount++
	return before, l.Clone(), nil
}

func (f *fakeListingStore) RecallIfFlagged(_ context.Context, id string, threshold int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recallCalls++
	if f.recallErr != nil {
		return false, f.recallErr
	}
	l, ok := f.listings[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if l.Status == models.StatusRecalled || l.FlagCount < threshold {
		return false, nil
	}
	l.Status = models.StatusRecalled
	return true, nil
}

// fakeNotificationStore records inserts for the notification service tests.
type fakeNotificationStore struct {
	mu            sync.Mutex
	inserted      []models.AdminNotification
	markedRead    []string
	deletedBefore []time.Time
	deleteCount   int64
	insertErr     error
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *models.AdminNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *n)
	return nil
}

func (f *fakeNotificationStore) List(_ context.Context, limit int) ([]models.AdminNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.inserted) {
		limit = len(f.inserted)
	}
	return append([]models.AdminNotification(nil), f.inserted[:limit]...), nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeNotificationStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBefore = append(f.deletedBefore, cutoff)
	return f.deleteCount, nil
}

func (f *fakeNotificationStore) byType(typ models.NotificationType) []models.AdminNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AdminNotification
	for _, n := range f.inserted {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// fakeMessageStore is an in-memory MessageStoreInterface.
type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []models.Message
	pageCalls int
}

func (f *fakeMessageStore) Insert(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageStore) Page(_ context.Context, chatID string, page, size int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	var chat []models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			chat = append(chat, m)
		}
	}
	start := page * size
	if start >= len(chat) {
		return []models.Message{}, nil
	}
	end := start + size
	if end > len(chat) {
		end = len(chat)
	}
	return append([]models.Message(nil), chat[start:end]...), nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, chatID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ChatID == chatID && f.messages[i].ID == messageID {
			f.messages[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeIdentity implements providers.IdentityVerifierInterface with a fixed
// outcome per call.
type fakeIdentity struct {
	mu     sync.Mutex
	userID string
	errs   []error
	calls  int
}

func (f *fakeIdentity) VerifyCredentials(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}
	f.calls++
	if err != nil {
		return "", err
	}
	return f.userID, nil
}
