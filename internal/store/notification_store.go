package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rently/internal/models"
	"rently/internal/providers"
)

type NotificationStoreInterface interface {
	Insert(ctx context.Context, n *models.AdminNotification) error
	List(ctx context.Context, limit int) ([]models.AdminNotification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationStore struct {
	col    *mongo.Collection
	logger providers.Logger
}

func NewNotificationStore(db *mongo.Database, logger providers.Logger) NotificationStoreInterface {
	return &NotificationStore{
		col:    db.Collection(CollAdminNotifications),
		logger: logger,
	}
}

func (s *NotificationStore) Insert(ctx context.Context, n *models.AdminNotification) error {
	_, err := s.col.InsertOne(ctx, n)
	return err
}

// List returns notifications, unread first, newest within each group.
func (s *NotificationStore) List(ctx context.Context, limit int) ([]models.AdminNotification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.AdminNotification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReadBefore removes read notifications created before cutoff.
func (s *NotificationStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"read":      true,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
