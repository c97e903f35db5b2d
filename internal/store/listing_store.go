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

type ListingStoreInterface interface {
	Insert(ctx context.Context, l *models.Listing) error
	Get(ctx context.Context, id string) (*models.Listing, error)
	Replace(ctx context.Context, updated *models.Listing) (*models.Listing, error)
	AddFlag(ctx context.Context, id string, flag models.Flag) (*models.Listing, *models.Listing, error)
	RecallIfFlagged(ctx context.Context, id string, threshold int) (bool, error)
}

type ListingStore struct {
	client *mongo.Client
	col    *mongo.Collection
	logger providers.Logger
}

func NewListingStore(client *mongo.Client, db *mongo.Database, logger providers.Logger) ListingStoreInterface {
	return &ListingStore{
		client: client,
		col:    db.Collection(CollListings),
		logger: logger,
	}
}

func (s *ListingStore) Insert(ctx context.Context, l *models.Listing) error {
	_, err := s.col.InsertOne(ctx, l)
	return err
}

func (s *ListingStore) Get(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Replace swaps the stored document for updated and returns the previous
// document, so callers can publish a before/after change event.
func (s *ListingStore) Replace(ctx context.Context, updated *models.Listing) (*models.Listing, error) {
	var before models.Listing
	opts := options.FindOneAndReplace().SetReturnDocument(options.Before)
	err := s.col.FindOneAndReplace(ctx, bson.M{"_id": updated.ID}, updated, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &before, nil
}

// AddFlag atomically appends the flag and bumps flagCount, returning the
// pre- and post-write documents.
func (s *ListingStore) AddFlag(ctx context.Context, id string, flag models.Flag) (*models.Listing, *models.Listing, error) {
	var before models.Listing
	update := bson.M{
		"$push": bson.M{"flags": flag},
		"$inc":  bson.M{"flagCount": 1},
		"$set":  bson.M{"updatedAt": flag.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	after := before.Clone()
	after.Flags = append(after.Flags, flag)
	after.FlagCount++
	after.UpdatedAt = flag.CreatedAt
	return &before, after, nil
}

// RecallIfFlagged flips the listing to recalled inside a transaction that
// re-reads the document and re-checks the threshold, so two racing flag
// events cannot recall twice. Returns whether this call performed the
// transition.
func (s *ListingStore) RecallIfFlagged(ctx context.Context, id string, threshold int) (bool, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var l models.Listing
		if err := s.col.FindOne(sc, bson.M{"_id": id}).Decode(&l); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return false, ErrNotFound
			}
			return false, err
		}
		if l.Status == models.StatusRecalled || l.FlagCount < threshold {
			return false, nil
		}

		now := time.Now().UTC()
		_, err := s.col.UpdateOne(sc, bson.M{"_id": id}, bson.M{"$set": bson.M{
			"status":     models.StatusRecalled,
			"archivedAt": now,
			"updatedAt":  now,
		}})
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
