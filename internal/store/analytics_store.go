package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rently/internal/models"
	"rently/internal/providers"
)

type AnalyticsStoreInterface interface {
	IncrementParent(ctx context.Context, listingID string, metric models.MetricType, delta int) error
	InitParent(ctx context.Context, listingID string) error
	Parent(ctx context.Context, listingID string) (*models.ListingAnalytics, error)
	IncrementDaily(ctx context.Context, listingID, key string, metric models.MetricType, delta int) error
	IncrementHourly(ctx context.Context, listingID, key string, metric models.MetricType, delta int) error
	DailyBuckets(ctx context.Context, listingIDs, keys []string) ([]models.RollupBucket, error)
	HourlyBuckets(ctx context.Context, listingIDs, keys []string) ([]models.RollupBucket, error)
}

type AnalyticsStore struct {
	parent *mongo.Collection
	daily  *mongo.Collection
	hourly *mongo.Collection
	logger providers.Logger
}

func NewAnalyticsStore(db *mongo.Database, logger providers.Logger) AnalyticsStoreInterface {
	return &AnalyticsStore{
		parent: db.Collection(CollAnalytics),
		daily:  db.Collection(CollAnalyticsDaily),
		hourly: db.Collection(CollAnalyticsHourly),
		logger: logger,
	}
}

// IncrementParent applies a delta to the lifetime counter document. No
// upsert: a missing document surfaces as ErrNotFound so the caller can
// lazily initialize and retry.
func (s *AnalyticsStore) IncrementParent(ctx context.Context, listingID string, metric models.MetricType, delta int) error {
	res, err := s.parent.UpdateOne(ctx, bson.M{"_id": listingID}, bson.M{
		"$inc": bson.M{metric.Field(): delta},
		"$set": bson.M{"lastUpdated": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InitParent creates the zeroed counter document. Racing initializers are
// tolerated: a duplicate key error means someone else won.
func (s *AnalyticsStore) InitParent(ctx context.Context, listingID string) error {
	_, err := s.parent.InsertOne(ctx, &models.ListingAnalytics{
		ListingID:   listingID,
		LastUpdated: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *AnalyticsStore) Parent(ctx context.Context, listingID string) (*models.ListingAnalytics, error) {
	var a models.ListingAnalytics
	err := s.parent.FindOne(ctx, bson.M{"_id": listingID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AnalyticsStore) IncrementDaily(ctx context.Context, listingID, key string, metric models.MetricType, delta int) error {
	return s.incrementBucket(ctx, s.daily, listingID, key, metric, delta)
}

func (s *AnalyticsStore) IncrementHourly(ctx context.Context, listingID, key string, metric models.MetricType, delta int) error {
	return s.incrementBucket(ctx, s.hourly, listingID, key, metric, delta)
}

// incrementBucket upserts the bucket document, so the first event in a
// bucket creates it with the delta as the initial value.
func (s *AnalyticsStore) incrementBucket(ctx context.Context, col *mongo.Collection, listingID, key string, metric models.MetricType, delta int) error {
	_, err := col.UpdateOne(ctx,
		bson.M{"_id": listingID + ":" + key},
		bson.M{
			"$inc":         bson.M{metric.Field(): delta},
			"$set":         bson.M{"lastUpdated": time.Now().UTC()},
			"$setOnInsert": bson.M{"listingId": listingID, "bucket": key},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *AnalyticsStore) DailyBuckets(ctx context.Context, listingIDs, keys []string) ([]models.RollupBucket, error) {
	return s.buckets(ctx, s.daily, listingIDs, keys)
}

func (s *AnalyticsStore) HourlyBuckets(ctx context.Context, listingIDs, keys []string) ([]models.RollupBucket, error) {
	return s.buckets(ctx, s.hourly, listingIDs, keys)
}

func (s *AnalyticsStore) buckets(ctx context.Context, col *mongo.Collection, listingIDs, keys []string) ([]models.RollupBucket, error) {
	cursor, err := col.Find(ctx, bson.M{
		"listingId": bson.M{"$in": listingIDs},
		"bucket":    bson.M{"$in": keys},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []models.RollupBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
